package cli

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/liemotion/cmtm"
	"go.viam.com/liemotion/spatialmath"
)

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := NewApp(&out, &errOut).Run(append([]string{"liemotion"}, args...))
	return out.String(), errOut.String(), err
}

func TestExp(t *testing.T) {
	out, _, err := runApp(t, "exp", "--degrees", "0", "0", "90")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "-1")
	test.That(t, strings.Count(out, "\n"), test.ShouldBeGreaterThanOrEqualTo, 3)

	out, _, err = runApp(t, "exp", "0,0,0,1,2,3")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "3")

	_, _, err = runApp(t, "exp", "1", "2")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "got 2")

	_, _, err = runApp(t, "exp", "1", "two", "3")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `invalid number "two"`)
}

func TestLog(t *testing.T) {
	out, _, err := runApp(t, "log", "--degrees", "0", "-1", "0", "1", "0", "0", "0", "0", "1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lineNumbers(t, out, "log: "), test.ShouldResemble, []float64{0, 0, 90})

	out, _, err = runApp(t, "log", "1,0,0,1", "0,1,0,2", "0,0,1,3", "0,0,0,1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lineNumbers(t, out, "log: "), test.ShouldResemble, []float64{0, 0, 0, 1, 2, 3})

	_, _, err = runApp(t, "log", "1", "0", "0", "0", "1", "0", "0", "0", "2")
	test.That(t, err, test.ShouldWrap, spatialmath.ErrInvalidRotation)

	_, _, err = runApp(t, "log", "1", "0", "0")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCompose(t *testing.T) {
	out, errOut, err := runApp(t, "--debug", "compose", "0,0,0,1,2,3", "0,0,0,4,5,6")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lineNumbers(t, out, "twist: "), test.ShouldResemble, []float64{0, 0, 0, 5, 7, 9})
	test.That(t, errOut, test.ShouldContainSubstring, "composed")

	_, errOut, err = runApp(t, "compose", "0,0,0,1,2,3", "0,0,0,4,5,6")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldBeEmpty)

	_, _, err = runApp(t, "compose", "0,0,0,1,2,3")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCMTM(t *testing.T) {
	out, _, err := runApp(t, "cmtm", "0,0,0,0,0,0", "1,0,0,0,0,0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldStartWith, "order 1 spatial CMTM\n")
	test.That(t, lineNumbers(t, out, "derivative 1: "), test.ShouldResemble, []float64{1, 0, 0, 0, 0, 0})

	out, _, err = runApp(t, "cmtm", "--rotational", "--inverse", "0,0,0", "0,0,1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldStartWith, "order 1 rotational CMTM\n")
	test.That(t, lineNumbers(t, out, "derivative 1: "), test.ShouldResemble, []float64{0, 0, -1})

	out, _, err = runApp(t, "cmtm", "--with", "0,0,0,1,0,0,0,0,0,0,1,0", "0,0,0,0,0,0", "1,0,0,0,0,0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lineNumbers(t, out, "derivative 1: "), test.ShouldResemble, []float64{1, 0, 0, 0, 1, 0})

	_, _, err = runApp(t, "cmtm", "--with", "0,0,0,0,0,0", "0,0,0,0,0,0", "1,0,0,0,0,0")
	test.That(t, err, test.ShouldWrap, cmtm.ErrDimensionMismatch)

	_, _, err = runApp(t, "cmtm", "--rotational", "1,2")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "groups of 3")
}

func TestLua(t *testing.T) {
	_, errOut, err := runApp(t, "--log-level", "info", "lua", "-e", `logger.info("from lua " .. CMTM.identity(2):order())`)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldContainSubstring, "from lua 2")

	path := filepath.Join(t.TempDir(), "script.lua")
	test.That(t, os.WriteFile(path, []byte(`assert(SO3.identity():log()[1] == 0)`), 0o600), test.ShouldBeNil)
	_, _, err = runApp(t, "lua", path)
	test.That(t, err, test.ShouldBeNil)

	_, _, err = runApp(t, "lua", "-e", "error('boom')")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "boom")

	_, _, err = runApp(t, "lua", "-e", "x = 1", path)
	test.That(t, err, test.ShouldNotBeNil)

	_, _, err = runApp(t, "lua")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLogLevel(t *testing.T) {
	_, _, err := runApp(t, "--log-level", "loud", "exp", "0", "0", "0")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid log level")

	t.Setenv("LIEMOTION_LOG_LEVEL", "debug")
	_, errOut, err := runApp(t, "compose", "0,0,0,1,2,3", "0,0,0,4,5,6")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldContainSubstring, "composed")
}

func TestBench(t *testing.T) {
	t.Setenv("LIEMOTION_BENCH_ITERATIONS", "20")
	out, _, err := runApp(t, "bench", "--rounds", "2", "--workers", "2")
	test.That(t, err, test.ShouldBeNil)
	for _, name := range []string{"SO3 apply", "SE3 apply", "CMTM apply twist", "CMTM compose", "p99 ns/op"} {
		test.That(t, out, test.ShouldContainSubstring, name)
	}

	results, err := runBench(context.Background(), benchCases()[:1], 5, 3, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, results, test.ShouldHaveLength, 1)
	test.That(t, results[0].count, test.ShouldEqual, 6)
	test.That(t, results[0].median, test.ShouldBeGreaterThanOrEqualTo, 0.)

	failing := []benchCase{{name: "broken", run: func(int) error { return finite(1, 0, nan()) }}}
	_, err = runBench(context.Background(), failing, 1, 1, 1)
	test.That(t, err, test.ShouldWrap, errNonFinite)
	test.That(t, err.Error(), test.ShouldContainSubstring, "broken")

	_, err = runBench(context.Background(), benchCases(), 0, 1, 1)
	test.That(t, err, test.ShouldNotBeNil)
}

// lineNumbers parses the line of out starting with prefix, rounding away float noise and
// negative zeros.
func lineNumbers(t *testing.T, out, prefix string) []float64 {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		values, err := parseNumbers([]string{strings.TrimPrefix(line, prefix)})
		test.That(t, err, test.ShouldBeNil)
		for i, v := range values {
			values[i] = math.Round(v*1e6)/1e6 + 0
		}
		return values
	}
	t.Fatalf("no line starting with %q in %q", prefix, out)
	return nil
}

func nan() float64 {
	zero := 0.
	return zero / zero
}
