package sandbox

import (
	"strings"
	"testing"
)

func TestJavaScriptRunner_WrapCapturesConsole(t *testing.T) {
	filename, harnessed := JavaScriptRunner{}.Wrap("console.log('hi')")

	if filename != "main.js" {
		t.Errorf("Expected main.js, got %s", filename)
	}
	if !strings.Contains(harnessed, "console.log('hi')") {
		t.Error("Expected user source inside harness")
	}
	if !strings.Contains(harnessed, "catch (error)") {
		t.Error("Expected error capture in harness")
	}
	if args := (JavaScriptRunner{}).RunArgs(filename); args[0] != "node" || args[1] != "main.js" {
		t.Errorf("Expected node argv, got %v", args)
	}
	if (JavaScriptRunner{}).BuildArgs(filename) != nil {
		t.Error("Expected no build step for javascript")
	}
}

func TestTypeScriptRunner_Wrap(t *testing.T) {
	filename, harnessed := TypeScriptRunner{}.Wrap("console.log(1)")

	if filename != "main.ts" {
		t.Errorf("Expected main.ts, got %s", filename)
	}
	if !strings.Contains(harnessed, "let output: string") {
		t.Error("Expected typed harness")
	}
	args := TypeScriptRunner{}.RunArgs(filename)
	if args[0] != "npx" || args[1] != "ts-node" {
		t.Errorf("Expected npx ts-node argv, got %v", args)
	}
}

func TestPythonRunner_Wrap(t *testing.T) {
	filename, harnessed := PythonRunner{}.Wrap("print('hi')")

	if filename != "main.py" {
		t.Errorf("Expected main.py, got %s", filename)
	}
	if !strings.Contains(harnessed, `exec("""print('hi')""")`) {
		t.Errorf("Expected source embedded in exec, got:\n%s", harnessed)
	}
	if !strings.Contains(harnessed, "StringIO") {
		t.Error("Expected stdout capture in harness")
	}
}

func TestJavaRunner_WrapBareSnippet(t *testing.T) {
	filename, harnessed := JavaRunner{}.Wrap(`System.out.println("hi");`)

	if filename != "Main.java" {
		t.Errorf("Expected Main.java for a bare snippet, got %s", filename)
	}
	if !strings.Contains(harnessed, "public class Main") {
		t.Error("Expected snippet wrapped in Main class")
	}
	if !strings.Contains(harnessed, `System.out.println("hi");`) {
		t.Error("Expected user source inside harness")
	}
}

func TestJavaRunner_WrapCompleteProgram(t *testing.T) {
	source := "public class Fibonacci {\n    public static void main(String[] args) {}\n}"
	filename, harnessed := JavaRunner{}.Wrap(source)

	if filename != "Fibonacci.java" {
		t.Errorf("Expected file named after the public class, got %s", filename)
	}
	if harnessed != source {
		t.Error("Expected complete program to pass through unwrapped")
	}

	runArgs := JavaRunner{}.RunArgs(filename)
	if runArgs[0] != "java" || runArgs[1] != "Fibonacci" {
		t.Errorf("Expected java Fibonacci argv, got %v", runArgs)
	}
	buildArgs := JavaRunner{}.BuildArgs(filename)
	if buildArgs[0] != "javac" || buildArgs[1] != "Fibonacci.java" {
		t.Errorf("Expected javac argv, got %v", buildArgs)
	}
}

func TestCppRunner_WrapBareSnippet(t *testing.T) {
	filename, harnessed := CppRunner{}.Wrap(`cout << "hi" << endl;`)

	if filename != "main.cpp" {
		t.Errorf("Expected main.cpp, got %s", filename)
	}
	if !strings.Contains(harnessed, "int main()") {
		t.Error("Expected snippet wrapped in main")
	}
}

func TestCppRunner_WrapCompleteProgram(t *testing.T) {
	source := "#include <iostream>\nint main() { return 0; }"
	_, harnessed := CppRunner{}.Wrap(source)

	if harnessed != source {
		t.Error("Expected program with main to pass through unwrapped")
	}

	buildArgs := CppRunner{}.BuildArgs("main.cpp")
	joined := strings.Join(buildArgs, " ")
	if !strings.Contains(joined, "-std=c++17") || !strings.Contains(joined, "-o program") {
		t.Errorf("Expected g++ c++17 build argv, got %v", buildArgs)
	}
	if args := (CppRunner{}).RunArgs("main.cpp"); args[0] != "./program" {
		t.Errorf("Expected ./program argv, got %v", args)
	}
}
