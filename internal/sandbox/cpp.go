package sandbox

import (
	"fmt"
	"strings"
)

const cppHarness = `#include <iostream>
#include <string>
#include <vector>
#include <algorithm>
using namespace std;

int main() {
    try {
        %s
    } catch (const exception& e) {
        cout << "Error: " << e.what() << endl;
    }
    return 0;
}
`

// CppRunner compiles with g++ and runs the produced binary. A submission
// that already defines main is used as-is.
type CppRunner struct{}

func (CppRunner) Language() string { return "cpp" }

func (CppRunner) Aliases() []string { return []string{"c++"} }

func (CppRunner) Wrap(source string) (string, string) {
	if strings.Contains(source, "main") {
		return "main.cpp", source
	}
	return "main.cpp", fmt.Sprintf(cppHarness, source)
}

func (CppRunner) BuildArgs(filename string) []string {
	return []string{"g++", "-Wall", "-std=c++17", filename, "-o", "program"}
}

func (CppRunner) RunArgs(string) []string {
	return []string{"./program"}
}
