package reader

import (
	"context"
	"fmt"
	"io"
	gosync "sync"

	"github.com/dgnsrekt/docreader/tts"
)

// Play reads the document aloud without a UI, writing each sentence to w
// as it starts. It returns when the last sentence finishes, when an
// utterance fails, or when ctx is done. Reloaded content restarts playback
// from the first sentence.
func (s *Session) Play(ctx context.Context, w io.Writer) error {
	var (
		mu      gosync.Mutex
		lastSeq uint64
		printed = -1
	)
	s.Controller.OnChange(func(st tts.State) {
		mu.Lock()
		defer mu.Unlock()
		if st.Seq <= lastSeq {
			return
		}
		lastSeq = st.Seq
		if st.Current != tts.StatePlaying || st.Index == printed {
			return
		}
		printed = st.Index
		fmt.Fprintf(w, "[%d/%d] %s\n", st.Index+1, len(st.Sentences), st.CurrentSentence())
	})

	// start returns the sequence number seen before playback began. Any
	// later snapshot that is not Playing ends this run, even one published
	// before Play returns.
	start := func() (uint64, error) {
		mu.Lock()
		printed = -1
		mu.Unlock()
		before := s.Controller.State()
		if len(before.Sentences) == 0 {
			return 0, tts.ErrNoContent
		}
		if err := s.Controller.Play(); err != nil {
			return 0, err
		}
		return before.Seq, nil
	}

	playSeq, err := start()
	if err != nil {
		return err
	}

	updates := s.Manager.Updates()
	for {
		select {
		case <-ctx.Done():
			s.Controller.Stop()
			return ctx.Err()

		case msg := <-s.Reloads():
			s.logger.Info("document changed, restarting", "path", msg.Path)
			s.Controller.LoadContent(msg.Text)
			if playSeq, err = start(); err != nil {
				return err
			}

		case st, ok := <-updates:
			if !ok {
				return nil
			}
			if st.Seq <= playSeq || st.Current == tts.StatePlaying {
				continue
			}
			if st.LastError != nil {
				return st.LastError
			}
			if st.Current == tts.StateReady {
				return nil
			}
		}
	}
}
