// main.go - CLI entry point: build a patch, open a backend, run the stream

/*
 ██▀███   ▄▄▄       ▄████▄   ██ ▄█▀   ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██ ▒ ██▒▒████▄    ▒██▀ ▀█   ██▄█▒    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▓██ ░▄█ ▒▒██  ▀█▄  ▒▓█    ▄ ▓███▄░    ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
▒██▀▀█▄  ░██▄▄▄▄██ ▒▓▓▄ ▄██▒▓██ █▄    ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██▓ ▒██▒ ▓█   ▓██▒▒ ▓███▀ ░▒██▒ █▄   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░ ▒▓ ░▒▓░ ▒▒   ▓▒█░░ ░▒ ▒  ░▒ ▒▒ ▓▒   ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
  ░▒ ░ ▒░  ▒   ▒▒ ░  ░  ▒   ░ ░▒ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
  ░░   ░   ░   ▒   ░        ░ ░░ ░      ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
   ░           ░  ░░ ░      ░  ░        ░  ░         ░       ░  ░           ░    ░  ░

(c) 2025 - 2026 The RackEngine Authors
https://github.com/Larshalvorhansen/RackEngine
License: GPLv3 or later
*/

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"
)

func boilerPlate() {
	fmt.Println("\nRackEngine - a tiny modular synthesizer engine")
	fmt.Println("https://github.com/Larshalvorhansen/RackEngine")
	fmt.Println("License: GPLv3 or later")
	fmt.Println()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	boilerPlate()

	var (
		durationS   float64
		sampleRate  int
		backendName string
		patchPath   string
		live        bool
	)

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.Float64Var(&durationS, "d", 6, "Play duration in seconds, negative runs forever")
	flagSet.IntVar(&sampleRate, "sr", 48000, "Sample rate in Hz")
	flagSet.StringVar(&backendName, "backend", "oto", "Audio backend: oto, alsa, headless")
	flagSet.StringVar(&patchPath, "patch", "", "Lua patch script (default: built-in demo patch)")
	flagSet.BoolVar(&live, "live", false, "Trigger the gate from the keyboard")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	backend, err := ParseBackend(backendName)
	if err != nil {
		fatalf("%v", err)
	}

	var spec PatchSpec
	switch {
	case patchPath != "":
		if spec, err = LoadPatchScript(patchPath); err != nil {
			fatalf("%v", err)
		}
	case live:
		spec = LiveDemoPatch()
	default:
		spec = DemoPatch()
	}

	rack, err := BuildRack(spec, sampleRate)
	if err != nil {
		fatalf("Error building patch: %v", err)
	}
	if rack.SinkModule() < 0 {
		fatalf("Patch has no OUT module.")
	}

	gateID := -1
	if live {
		if gateID = rack.FindModule(MOD_KEYGATE); gateID < 0 {
			fatalf("Live mode needs a keygate module in the patch.")
		}
	}

	if live || durationS < 0 {
		rack.SetRenderBudget(-1)
	} else {
		rack.SetRenderBudget(int64(durationS * float64(sampleRate)))
	}
	rack.Seal()

	output, err := NewAudioOutput(backend, sampleRate, rack)
	if err != nil {
		fatalf("Failed to initialize audio: %v", err)
	}
	defer output.Close()

	if backend == AUDIO_BACKEND_HEADLESS {
		renderOffline(rack)
		return
	}

	output.Start()

	switch {
	case live:
		keys := NewLiveKeys(rack, gateID)
		if err := keys.Start(); err != nil {
			fatalf("%v", err)
		}
		<-keys.Done()
		keys.Stop()
	case durationS >= 0:
		// Stream until the budget drains, then give the device a moment
		for rack.RemainingFrames() > 0 {
			time.Sleep(50 * time.Millisecond)
		}
		time.Sleep(100 * time.Millisecond)
	default:
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
	}

	output.Stop()
}

// renderOffline drains a bounded render budget without an audio device.
func renderOffline(rack *Rack) {
	if rack.RemainingFrames() < 0 {
		fmt.Println("Headless backend with no duration; nothing to render.")
		return
	}
	buf := make([]float32, 1024)
	for {
		if _, status := rack.RenderInto(buf, len(buf)/2); status == RENDER_COMPLETE {
			return
		}
	}
}
