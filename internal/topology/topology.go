// Package topology discovers the host's hardware-thread layout once at
// process start and computes the canonical worker->hwthread pinning map
// the pool uses. It assumes a symmetric (package, core, PU) topology, the
// same assumption the pool's single process-wide singleton depends on.
package topology

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"
)

// HwThreadMap is an ordered sequence of OS-visible CPU ids. HwThreadMap[i]
// is the hwthread worker i of the pool is pinned to.
type HwThreadMap []int

// Env is the immutable, process-wide topology and environment snapshot
// computed once on first access. AvailableHwThreads is the total number of
// hardware threads discovered; MaxNumThreads is the number of pool workers
// to create, clamped to at least 1.
type Env struct {
	AvailableHwThreads int
	MaxNumThreads      int
	Map                HwThreadMap
}

var (
	once     sync.Once
	instance *Env
	initErr  error
)

// Instance returns the process-wide Env, building it on first call. A
// failure to enumerate the topology is fatal at process start, per the
// pool's fail-fast design: every later parallel region depends on a
// correctly sized HwThreadMap.
//
// fatalHandler is invoked (instead of os.Exit) when construction fails, so
// tests can observe the failure path without killing the test binary.
func Instance() *Env {
	once.Do(func() {
		instance, initErr = build()
	})
	if initErr != nil {
		fatalHandler("topology", fmt.Errorf("enumerate hardware topology: %w", initErr))
	}
	return instance
}

// fatalHandler is replaced in tests; production wiring is installed by
// the pool package to avoid an import cycle with rmperr.
var fatalHandler = func(component string, err error) {
	panic(fmt.Sprintf("%s: %v", component, err))
}

// SetFatalHandler overrides how Instance reports a failed build. Called
// once during pool construction to route through rmperr.Fatal.
func SetFatalHandler(h func(component string, err error)) {
	fatalHandler = h
}

// reset clears the memoized singleton; test-only, guarded by the package
// not exposing it outside _test.go files that need a fresh Env per case.
func reset() {
	once = sync.Once{}
	instance = nil
	initErr = nil
}

func build() (*Env, error) {
	packages, coresPerPackage, pusPerCore, osIDs, err := discover()
	if err != nil {
		return nil, err
	}

	puppa := coresPerPackage * pusPerCore
	total := packages * puppa
	if total <= 0 || total > len(osIDs) {
		// Defensive: discover() should already guarantee this, but a
		// mismatch here would silently corrupt the pinning map.
		return nil, fmt.Errorf("inconsistent topology: packages=%d coresPerPackage=%d pusPerCore=%d osIDs=%d", packages, coresPerPackage, pusPerCore, len(osIDs))
	}

	hwMap := make(HwThreadMap, total)
	for x := 0; x < total; x++ {
		pkg := x / puppa
		off := x % puppa
		core := off % coresPerPackage
		pu := off / coresPerPackage
		hwthread := puppa*pkg + core*pusPerCore + pu
		hwMap[x] = osIDs[hwthread]
	}

	return &Env{
		AvailableHwThreads: total,
		MaxNumThreads:      resolveMaxThreads(total),
		Map:                hwMap,
	}, nil
}

// discover enumerates packages, cores-per-package and PUs-per-core, assuming
// a symmetric topology, and returns the OS CPU id for each logical slot in
// slot order. It is grounded on gopsutil/v4's /proc/cpuinfo-derived counts;
// where gopsutil cannot resolve physical/core ids (containers, some
// non-Linux hosts) it falls back to a flat single-package topology of
// runtime.NumCPU() independent cores.
func discover() (packages, coresPerPackage, pusPerCore int, osIDs []int, err error) {
	infos, infoErr := cpu.Info()
	physicalCores, physErr := cpu.Counts(false)
	logicalCPUs, logErr := cpu.Counts(true)

	if infoErr != nil || physErr != nil || logErr != nil || len(infos) == 0 || physicalCores <= 0 || logicalCPUs <= 0 {
		return flatFallback()
	}

	pkgSet := map[string]struct{}{}
	for _, in := range infos {
		pkgSet[in.PhysicalID] = struct{}{}
	}
	numPackages := len(pkgSet)
	if numPackages == 0 || allEmpty(pkgSet) {
		numPackages = 1
	}

	if physicalCores%numPackages != 0 {
		// Asymmetric package sizes; the symmetric-topology assumption
		// doesn't hold, so fall back rather than compute a wrong map.
		return flatFallback()
	}
	coresPerPackage = physicalCores / numPackages

	if coresPerPackage == 0 || logicalCPUs%physicalCores != 0 {
		return flatFallback()
	}
	pusPerCore = logicalCPUs / physicalCores

	// Group logical CPUs by package, then core, so siblings of one core
	// occupy adjacent slots as build's pinning formula expects.
	sort.SliceStable(infos, func(i, j int) bool {
		a, b := infos[i], infos[j]
		if a.PhysicalID != b.PhysicalID {
			return a.PhysicalID < b.PhysicalID
		}
		if a.CoreID != b.CoreID {
			return a.CoreID < b.CoreID
		}
		return a.CPU < b.CPU
	})

	osIDs = make([]int, 0, len(infos))
	for _, in := range infos {
		osIDs = append(osIDs, int(in.CPU))
	}
	if len(osIDs) != numPackages*coresPerPackage*pusPerCore {
		return flatFallback()
	}

	return numPackages, coresPerPackage, pusPerCore, osIDs, nil
}

func allEmpty(set map[string]struct{}) bool {
	_, onlyEmpty := set[""]
	return onlyEmpty && len(set) == 1
}

// flatFallback models the host as one package, one PU per core, and
// runtime.NumCPU() independent cores. It never fails.
func flatFallback() (packages, coresPerPackage, pusPerCore int, osIDs []int, err error) {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	osIDs = make([]int, n)
	for i := range osIDs {
		osIDs[i] = i
	}
	return 1, n, 1, osIDs, nil
}
