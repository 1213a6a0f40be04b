//go:build !unix

package espeak

import (
	"os"

	"github.com/dgnsrekt/docreader/tts"
)

func suspend(*os.Process) error { return tts.ErrNotSupported }

func resume(*os.Process) error { return tts.ErrNotSupported }
