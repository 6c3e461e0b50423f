package sandbox

import "fmt"

const tsHarness = `let output: string = '';
console.log = (...args: any[]) => {
  const formatted = args.map(arg =>
    typeof arg === 'object' ? JSON.stringify(arg, null, 2) : String(arg)
  ).join(' ');
  output += formatted + '\n';
};

try {
  %s
} catch (error: any) {
  output += 'Error: ' + error.message + '\n';
}

process.stdout.write(output);
`

// TypeScriptRunner executes snippets with ts-node via npx.
type TypeScriptRunner struct{}

func (TypeScriptRunner) Language() string { return "typescript" }

func (TypeScriptRunner) Aliases() []string { return nil }

func (TypeScriptRunner) Wrap(source string) (string, string) {
	return "main.ts", fmt.Sprintf(tsHarness, source)
}

func (TypeScriptRunner) BuildArgs(string) []string { return nil }

func (TypeScriptRunner) RunArgs(filename string) []string {
	return []string{"npx", "ts-node", filename}
}
