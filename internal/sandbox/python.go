package sandbox

import "fmt"

// pyHarness redirects stdout into a buffer while the snippet runs, turning
// exceptions into "Error: <message>" text, then prints whatever was
// captured.
const pyHarness = `import sys
from io import StringIO

def run_code():
    output = StringIO()
    sys.stdout = output

    try:
        exec("""%s""")
    except Exception as e:
        print(f"Error: {str(e)}")

    return output.getvalue()

result = run_code()
sys.stdout = sys.__stdout__
print(result, end='')
`

// PythonRunner executes snippets with python3.
type PythonRunner struct{}

func (PythonRunner) Language() string { return "python" }

func (PythonRunner) Aliases() []string { return nil }

func (PythonRunner) Wrap(source string) (string, string) {
	return "main.py", fmt.Sprintf(pyHarness, source)
}

func (PythonRunner) BuildArgs(string) []string { return nil }

func (PythonRunner) RunArgs(filename string) []string {
	return []string{"python3", filename}
}
