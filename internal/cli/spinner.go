package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a status line on stderr while a diagram renders. The
// message follows the pipeline stages (see spinnerHooks). On anything but a
// terminal it stays silent.
type Spinner struct {
	w    io.Writer
	draw bool

	mu      sync.Mutex
	message string
	width   int // widest line drawn so far

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// newSpinner returns a stopped spinner writing to w. It stops by itself
// when ctx is done.
func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		draw:    isTerminal(w),
		message: message,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Spinner) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-ticker.C:
			s.frame(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *Spinner) frame(glyph string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.draw {
		return
	}
	line := glyph + " " + s.message
	s.width = max(s.width, len(line))
	fmt.Fprintf(s.w, "\r%s %s%s", styleSpinner.Render(glyph), StyleDim.Render(s.message),
		strings.Repeat(" ", s.width-len(line)))
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draw && s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Message returns the text currently shown.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Stop ends the animation and clears the line. It may be called more than
// once and without a prior Start.
func (s *Spinner) Stop() {
	s.once.Do(s.cancel)
	s.wg.Wait()
}
