package sandbox

// Runner describes one language's build/execute pipeline. Wrap embeds the
// raw source into an output-capturing harness (or passes a complete program
// through untouched), and the arg methods produce discrete argv slices —
// file paths are never formatted into a shell command line.
type Runner interface {
	// Language returns the canonical lowercase tag.
	Language() string

	// Aliases returns additional tags accepted for this language.
	Aliases() []string

	// Wrap returns the source file name to materialize and the harnessed
	// source text.
	Wrap(source string) (filename string, harnessed string)

	// BuildArgs returns the compile step argv, or nil for interpreted
	// languages.
	BuildArgs(filename string) []string

	// RunArgs returns the run step argv.
	RunArgs(filename string) []string
}
