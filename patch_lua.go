// patch_lua.go - Lua patch scripts, translated into a PatchSpec at setup

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
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Patch scripts describe a rack in Lua and run exactly once, at setup:
//
//	local freq = rack.module{type="param", name="Freq", value=220}
//	local vco  = rack.module{type="vco"}
//	local out  = rack.module{type="out"}
//	rack.wire(freq, 0, vco, 0)
//	rack.wire(vco, 0, out, 0)
//	rack.wire(vco, 0, out, 1)
//
// rack.module returns the module's id (its declaration index). Script
// errors fail setup; nothing from the Lua state survives into rendering.

var luaModuleTypes = map[string]ModuleType{
	"param":   MOD_PARAM,
	"gate":    MOD_GATE,
	"vco":     MOD_VCO,
	"lfo":     MOD_LFO,
	"adsr":    MOD_ADSR,
	"vca":     MOD_VCA,
	"mix4":    MOD_MIX4,
	"out":     MOD_OUT,
	"keygate": MOD_KEYGATE,
}

// LoadPatchScript runs a patch script file and returns the patch it built.
func LoadPatchScript(path string) (PatchSpec, error) {
	L := lua.NewState()
	defer L.Close()
	var spec PatchSpec
	registerRackAPI(L, &spec)
	if err := L.DoFile(path); err != nil {
		return PatchSpec{}, fmt.Errorf("patch script: %w", err)
	}
	return spec, nil
}

// LoadPatchSource is LoadPatchScript for in-memory sources.
func LoadPatchSource(src string) (PatchSpec, error) {
	L := lua.NewState()
	defer L.Close()
	var spec PatchSpec
	registerRackAPI(L, &spec)
	if err := L.DoString(src); err != nil {
		return PatchSpec{}, fmt.Errorf("patch script: %w", err)
	}
	return spec, nil
}

func registerRackAPI(L *lua.LState, spec *PatchSpec) {
	rack := L.NewTable()
	L.SetField(rack, "module", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		typeName := luaString(tbl, "type")
		typ, ok := luaModuleTypes[typeName]
		if !ok {
			L.RaiseError("unknown module type %q", typeName)
			return 0
		}
		ms := ModuleSpec{
			Type:    typ,
			Name:    luaString(tbl, "name"),
			Inputs:  int(luaNumber(tbl, "inputs")),
			Outputs: int(luaNumber(tbl, "outputs")),
			Value:   luaNumber(tbl, "value"),
			GateLen: luaNumber(tbl, "length"),
			Freq:    luaNumber(tbl, "freq"),
			Attack:  luaNumber(tbl, "attack"),
			Decay:   luaNumber(tbl, "decay"),
			Sustain: luaNumber(tbl, "sustain"),
			Release: luaNumber(tbl, "release"),
			Gain:    luaNumber(tbl, "gain"),
		}
		if w, ok := tbl.RawGetString("weights").(*lua.LTable); ok {
			for i := 0; i < 4; i++ {
				if n, ok := w.RawGetInt(i + 1).(lua.LNumber); ok {
					ms.MixWeights[i] = float32(n)
				}
			}
		}
		spec.Modules = append(spec.Modules, ms)
		L.Push(lua.LNumber(len(spec.Modules) - 1))
		return 1
	}))
	L.SetField(rack, "wire", L.NewFunction(func(L *lua.LState) int {
		spec.Wires = append(spec.Wires, WireSpec{
			FromModule: L.CheckInt(1),
			FromPort:   L.CheckInt(2),
			ToModule:   L.CheckInt(3),
			ToPort:     L.CheckInt(4),
		})
		return 0
	}))
	L.SetGlobal("rack", rack)
}

func luaString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func luaNumber(tbl *lua.LTable, key string) float32 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float32(n)
	}
	return 0
}
