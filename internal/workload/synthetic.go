// Package workload builds a synthetic stand-in for the caller's
// function when driving amorsize from the CLI. A CLI process cannot
// receive an arbitrary Go function as a command-line argument the way
// a library caller passes one in-process, so the CLI instead accepts a
// declarative Profile describing a workload's timing shape and
// reconstructs a function that matches it statistically. Every other
// command-line operation (optimize, execute, watch) runs the same
// generic decision path library callers use, against this stand-in.
package workload

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile describes a workload's timing and payload shape.
type Profile struct {
	Name              string  `yaml:"name" json:"name"`
	TotalItems        int     `yaml:"total_items" json:"total_items"`
	AvgSecondsPerItem float64 `yaml:"avg_seconds_per_item" json:"avg_seconds_per_item"`
	Jitter            float64 `yaml:"jitter" json:"jitter"` // coefficient of variation, 0 means uniform timing
	ReturnBytes       int     `yaml:"return_bytes" json:"return_bytes"`
}

// DefaultProfile is a moderate workload (2000 items of about 5 ms
// each, 20% jitter), useful when no profile file is supplied.
func DefaultProfile() Profile {
	return Profile{
		Name:              "default",
		TotalItems:        2000,
		AvgSecondsPerItem: 0.005,
		Jitter:            0.2,
		ReturnBytes:       64,
	}
}

// LoadProfile reads a Profile from a YAML or JSON file, selected by
// extension.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, err
	}

	profile := DefaultProfile()
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		err = json.Unmarshal(data, &profile)
	} else {
		err = yaml.Unmarshal(data, &profile)
	}
	return profile, err
}

// Item is one synthetic unit of work: an index paired with a
// deterministic duration drawn from the profile's distribution.
type Item struct {
	Index    int
	Duration time.Duration
}

// generator holds the one profile field the synthetic function needs
// at call time. It exists so Build can return a bound method value
// rather than a closure: a method value has a stable, package-qualified
// runtime name, while a closure over p.ReturnBytes would carry the
// compiler's anonymous ".funcN" name and fail the sampler's
// encodability check the same way a Python lambda fails to pickle.
type generator struct {
	returnBytes int
}

func (g *generator) run(item Item) []byte {
	if item.Duration > 0 {
		time.Sleep(item.Duration)
	}
	return make([]byte, g.returnBytes)
}

// Build reconstructs deterministic synthetic data and a function
// matching p's timing and payload shape. The returned function sleeps
// for the item's duration, then returns a p.ReturnBytes-sized slice,
// so sampling it behaves like sampling the real workload the profile
// was measured from.
func Build(p Profile) (func(Item) []byte, []Item) {
	if p.TotalItems <= 0 {
		p.TotalItems = 1
	}
	if p.AvgSecondsPerItem < 0 {
		p.AvgSecondsPerItem = 0
	}

	rng := rand.New(rand.NewPCG(1, 2))
	data := make([]Item, p.TotalItems)
	for i := range data {
		duration := p.AvgSecondsPerItem
		if p.Jitter > 0 {
			noise := rng.NormFloat64() * p.Jitter * p.AvgSecondsPerItem
			duration = math.Max(0, p.AvgSecondsPerItem+noise)
		}
		data[i] = Item{Index: i, Duration: time.Duration(duration * float64(time.Second))}
	}

	g := &generator{returnBytes: p.ReturnBytes}
	fn := g.run

	return fn, data
}
