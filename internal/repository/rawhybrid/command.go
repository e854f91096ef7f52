package rawhybrid

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/moviesearch/internal/domain"
)

// CommandName is the engine-native hybrid search command.
const CommandName = "FT.HYBRID"

// CommandSpec holds everything BuildCommand needs.
type CommandSpec struct {
	Index       string
	Query       string // unescaped; BuildCommand escapes it
	VectorField string
	Vector      []float32
	Limit       int
	Alpha       float64 // vector weight
	Beta        float64 // text weight
}

// BuildCommand returns the FT.HYBRID arguments after the command name, in wire order.
func BuildCommand(s CommandSpec) []string {
	limit := strconv.Itoa(s.Limit)
	return []string{
		s.Index,
		"SEARCH", Escape(s.Query),
		"VSIM", "@" + s.VectorField, "$BLOB",
		"KNN", "2", "K", limit,
		"COMBINE", "LINEAR", "6",
		"ALPHA", formatWeight(s.Alpha),
		"BETA", formatWeight(s.Beta),
		"WINDOW", limit,
		"LIMIT", "0", limit,
		"PARAMS", "2", "BLOB", string(domain.EncodeVector(s.Vector)),
	}
}

// formatWeight always keeps a decimal point: 0 -> "0.0", 0.25 -> "0.25".
func formatWeight(w float64) string {
	s := strconv.FormatFloat(w, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Describe renders args for logging with the vector payload replaced by its size.
func Describe(args []string) string {
	out := make([]string, len(args))
	copy(out, args)
	if n := len(out); n >= 4 && out[n-2] == "BLOB" {
		out[n-1] = "<" + strconv.Itoa(len(out[n-1])) + " bytes>"
	}
	return CommandName + " " + strings.Join(out, " ")
}
