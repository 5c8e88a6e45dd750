package system

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

var deckExtensions = []string{".yaml", ".yml"}

// RaiseFileLimit lifts the open file limit for batch runs over many decks.
func RaiseFileLimit(want uint64) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not read the open file limit: %v", err)
		return
	}
	if rLimit.Cur >= want {
		return
	}

	rLimit.Cur = want
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not raise the open file limit: %v", err)
	} else {
		fmt.Printf("[*] Open file limit raised to %d\n", rLimit.Cur)
	}
}

func isDeck(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range deckExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// FindLatestDeck returns the most recently modified deck file in dir.
func FindLatestDeck(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !isDeck(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no deck files found in %s", dir)
	}

	return latestFile, nil
}

// ListDecks returns every deck file in dir, sorted by name.
func ListDecks(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var decks []string
	for _, f := range files {
		if !f.IsDir() && isDeck(f.Name()) {
			decks = append(decks, filepath.Join(dir, f.Name()))
		}
	}
	sort.Strings(decks)

	if len(decks) == 0 {
		return nil, fmt.Errorf("no deck files found in %s", dir)
	}
	return decks, nil
}

// Stats is a snapshot of this process's resource usage.
type Stats struct {
	RSS        uint64
	CPUPercent float64
	Threads    int32
}

// ProcessStats reads the resource usage of the running process.
func ProcessStats() (Stats, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return Stats{}, err
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{RSS: mem.RSS}
	if cpu, err := p.CPUPercent(); err == nil {
		st.CPUPercent = cpu
	}
	if n, err := p.NumThreads(); err == nil {
		st.Threads = n
	}
	return st, nil
}

// Report summarizes a run for the -stats flag.
type Report struct {
	Build    string
	Decks    int
	Slides   int
	Removed  int
	Failed   int
	Total    time.Duration
	Resource Stats
}

func (r Report) String() string {
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Decks: %d (failed: %d)\n"+
			"Generated slides: %d (stale removed: %d)\n"+
			"Total Time: %.3fs\n"+
			"Memory (RSS): %.1f MiB\n"+
			"CPU: %.1f%% | Threads: %d\n"+
			"----------------------------\n",
		r.Build, r.Decks, r.Failed, r.Slides, r.Removed, r.Total.Seconds(),
		float64(r.Resource.RSS)/(1<<20), r.Resource.CPUPercent, r.Resource.Threads,
	)
}
