package decision

import (
	"fmt"
	"strings"
	"time"
)

// DiagnosticProfile traces every observed and derived number behind a
// decision, so Explain() can reconstruct the whole derivation for a
// human reader.
type DiagnosticProfile struct {
	AvgExecTime            time.Duration
	CoefficientOfVariation float64
	EstimatedTotalItems    int
	EstimatedSerialTime    time.Duration
	EstimatedResultMemory  uint64
	PeakMemoryBytes        uint64
	PhysicalCores          int
	ChosenWorkers          int
	ChosenChunkSize        int
	EstimatedSpeedup       float64
	WorkloadKind           string
	NestedParallelism      bool

	RejectionReasons []string
	Constraints      []string
	Recommendations  []string
}

func (p *DiagnosticProfile) reject(reason string)    { p.RejectionReasons = append(p.RejectionReasons, reason) }
func (p *DiagnosticProfile) constrain(reason string)  { p.Constraints = append(p.Constraints, reason) }
func (p *DiagnosticProfile) recommend(reason string)  { p.Recommendations = append(p.Recommendations, reason) }

// Explain renders a human-readable multi-section report of the
// decision, in the spirit of the original implementation's
// explain_decision().
func (p *DiagnosticProfile) Explain() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[1] WORKLOAD ANALYSIS\n")
	fmt.Fprintf(&sb, "  avg exec time: %s\n", p.AvgExecTime)
	fmt.Fprintf(&sb, "  coefficient of variation: %.3f\n", p.CoefficientOfVariation)
	fmt.Fprintf(&sb, "  workload kind: %s\n", p.WorkloadKind)
	fmt.Fprintf(&sb, "  estimated total items: %d\n", p.EstimatedTotalItems)

	fmt.Fprintf(&sb, "[2] RESOURCE ESTIMATES\n")
	fmt.Fprintf(&sb, "  estimated serial time: %s\n", p.EstimatedSerialTime)
	fmt.Fprintf(&sb, "  estimated result memory: %d bytes\n", p.EstimatedResultMemory)
	fmt.Fprintf(&sb, "  peak memory per call: %d bytes\n", p.PeakMemoryBytes)
	fmt.Fprintf(&sb, "  physical cores: %d\n", p.PhysicalCores)

	fmt.Fprintf(&sb, "[3] CONSTRAINTS\n")
	for _, c := range p.Constraints {
		fmt.Fprintf(&sb, "  - %s\n", c)
	}

	fmt.Fprintf(&sb, "[4] REJECTIONS CONSIDERED\n")
	for _, r := range p.RejectionReasons {
		fmt.Fprintf(&sb, "  - %s\n", r)
	}

	fmt.Fprintf(&sb, "[5] NESTED PARALLELISM\n")
	fmt.Fprintf(&sb, "  detected: %v\n", p.NestedParallelism)

	fmt.Fprintf(&sb, "[6] DECISION\n")
	fmt.Fprintf(&sb, "  workers: %d, chunk size: %d, estimated speedup: %.2fx\n", p.ChosenWorkers, p.ChosenChunkSize, p.EstimatedSpeedup)

	fmt.Fprintf(&sb, "[7] RECOMMENDATIONS\n")
	for _, r := range p.Recommendations {
		fmt.Fprintf(&sb, "  - %s\n", r)
	}

	return sb.String()
}
