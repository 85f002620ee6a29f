package rodview

import (
	"sync"
	"testing"

	"github.com/ysmood/gson"
)

type recordingListener struct {
	mu   sync.Mutex
	navs []string
}

func (r *recordingListener) LoadCompleted() {}

func (r *recordingListener) NavigationAttempted(target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navs = append(r.navs, target)
}

func (r *recordingListener) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.navs...)
}

func TestSetListenerConcurrentWithNavigation(t *testing.T) {
	s := &Surface{}
	l := &recordingListener{}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.SetListener(l)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := s.onNavigate(gson.New("about:/x.md")); err != nil {
				t.Errorf("onNavigate: %v", err)
			}
		}
	}()
	wg.Wait()

	s.SetListener(l)
	if _, err := s.onNavigate(gson.New("about:/y.md")); err != nil {
		t.Fatalf("onNavigate: %v", err)
	}
	navs := l.snapshot()
	if len(navs) == 0 || navs[len(navs)-1] != "about:/y.md" {
		t.Errorf("navs: got %v, want last entry about:/y.md", navs)
	}
}
