package sandbox

import "fmt"

// jsHarness captures console.log output and converts uncaught errors into
// "Error: <message>" text instead of letting the process crash.
const jsHarness = `(async () => {
  let output = '';
  console.log = (...args) => {
    const formatted = args.map(arg =>
      typeof arg === 'object' ? JSON.stringify(arg, null, 2) : String(arg)
    ).join(' ');
    output += formatted + '\n';
  };

  try {
    %s
  } catch (error) {
    output += 'Error: ' + error.message + '\n';
  }

  process.stdout.write(output);
})();
`

// JavaScriptRunner executes snippets with node.
type JavaScriptRunner struct{}

func (JavaScriptRunner) Language() string { return "javascript" }

func (JavaScriptRunner) Aliases() []string { return nil }

func (JavaScriptRunner) Wrap(source string) (string, string) {
	return "main.js", fmt.Sprintf(jsHarness, source)
}

func (JavaScriptRunner) BuildArgs(string) []string { return nil }

func (JavaScriptRunner) RunArgs(filename string) []string {
	return []string{"node", filename}
}
