package main

import (
	"fmt"
	"sort"

	"github.com/pkg/profile"
)

var profileMode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"trace":     profile.TraceProfile,
}

func profileModes() []string {
	modes := make([]string, 0, len(profileMode))
	for mode := range profileMode {
		modes = append(modes, mode)
	}
	sort.Strings(modes)
	return modes
}

// startProfile starts profiling into the current directory. The returned
// value must be stopped to write the profile.
func startProfile(mode string) (interface{ Stop() }, error) {
	fn, ok := profileMode[mode]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q, want one of %v", mode, profileModes())
	}
	return profile.Start(fn, profile.ProfilePath("."), profile.Quiet, profile.NoShutdownHook), nil
}
