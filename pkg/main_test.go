package warmer

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	if err := InitLogger(false, true, false); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
