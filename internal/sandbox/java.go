package sandbox

import (
	"fmt"
	"regexp"
	"strings"
)

// javaClassPattern finds the public class a complete program declares; the
// source file must be named after it.
var javaClassPattern = regexp.MustCompile(`public\s+class\s+(\w+)`)

const javaDefaultClass = "Main"

const javaHarness = `public class Main {
    public static void main(String[] args) {
        try {
            %s
        } catch (Exception e) {
            System.out.println("Error: " + e.getMessage());
        }
    }
}
`

// JavaRunner compiles with javac and runs with java. A submission that
// already declares a public class is used as-is, so users may submit either
// a bare snippet or a complete program.
type JavaRunner struct{}

func (JavaRunner) Language() string { return "java" }

func (JavaRunner) Aliases() []string { return nil }

func (JavaRunner) Wrap(source string) (string, string) {
	if match := javaClassPattern.FindStringSubmatch(source); match != nil {
		return match[1] + ".java", source
	}
	return javaDefaultClass + ".java", fmt.Sprintf(javaHarness, source)
}

func (JavaRunner) BuildArgs(filename string) []string {
	return []string{"javac", filename}
}

func (JavaRunner) RunArgs(filename string) []string {
	return []string{"java", strings.TrimSuffix(filename, ".java")}
}
