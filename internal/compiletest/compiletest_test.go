package compiletest

import "testing"

func TestGoldenFixtures(t *testing.T) {
	RunDir(t, "testdata/script")
}
