package dlis

import (
	"sync"
	"testing"
)

func TestRegistryOpenSharedReusesStream(t *testing.T) {
	path := writeMinimalFile(t)
	reg := NewRegistry(Options{Settings: DefaultSettings()})
	defer reg.CloseAll()

	a, err := reg.OpenShared(path)
	if err != nil {
		t.Fatalf("OpenShared: %v", err)
	}
	b, err := reg.OpenShared(path)
	if err != nil {
		t.Fatalf("OpenShared: %v", err)
	}
	if a != b {
		t.Fatalf("OpenShared returned distinct Streams for the same path")
	}
}

func TestRegistryOpenSharedConcurrent(t *testing.T) {
	path := writeMinimalFile(t)
	reg := NewRegistry(Options{Settings: DefaultSettings()})
	defer reg.CloseAll()

	const n = 16
	streams := make([]*Stream, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			s, err := reg.OpenShared(path)
			if err != nil {
				t.Errorf("OpenShared: %v", err)
				return
			}
			streams[i] = s
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if streams[i] != streams[0] {
			t.Fatalf("concurrent OpenShared calls returned different Streams")
		}
	}
}

func TestRegistryEvict(t *testing.T) {
	path := writeMinimalFile(t)
	reg := NewRegistry(Options{Settings: DefaultSettings()})

	a, err := reg.OpenShared(path)
	if err != nil {
		t.Fatalf("OpenShared: %v", err)
	}
	if err := reg.Evict(path); err != nil {
		t.Fatalf("Evict: %v", err)
	}

	b, err := reg.OpenShared(path)
	if err != nil {
		t.Fatalf("OpenShared after Evict: %v", err)
	}
	if a == b {
		t.Fatalf("Evict did not force a fresh Open")
	}
	reg.CloseAll()
}
