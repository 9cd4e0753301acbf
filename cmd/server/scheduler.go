package main

import (
	"bytes"
	"image/png"
	"log"
	"sync"

	"zoomdive"
	"zoomdive/internal/store"
	"zoomdive/render"
	"zoomdive/view"
)

// jobScheduler drives one render job: it splits the job into per-view work
// units and lets a bounded pool of workers evaluate, render and persist
// them. Views are independent, so workers never coordinate beyond popping
// work and reporting completion.
type jobScheduler struct {
	st     *store.Store
	jobID  int64
	params jobParams
	pal    render.Palette

	workers int

	totalViews    int
	finishedViews int

	unstarted map[zoomdive.ViewKey]struct{}
	inProcess map[zoomdive.ViewKey]struct{}
	factors   map[zoomdive.ViewKey]float64
	failed    bool
	m         sync.Mutex
}

func newJobScheduler(st *store.Store, jobID int64, params jobParams, pal render.Palette, workers int) *jobScheduler {
	if workers < 1 {
		workers = 1
	}
	factors, _ := params.zoomFactors() // params are validated before scheduling

	unstarted := make(map[zoomdive.ViewKey]struct{}, len(params.Centers)*params.NZooms)
	keyFactors := make(map[zoomdive.ViewKey]float64, len(params.Centers)*params.NZooms)
	for i, c := range params.Centers {
		for s := 0; s < params.NZooms; s++ {
			k := zoomdive.ViewKey{X: c[0], Y: c[1], Zoom: s}
			unstarted[k] = struct{}{}
			keyFactors[k] = factors[i]
		}
	}

	return &jobScheduler{
		st:         st,
		jobID:      jobID,
		params:     params,
		pal:        pal,
		workers:    workers,
		totalViews: len(unstarted),
		unstarted:  unstarted,
		inProcess:  make(map[zoomdive.ViewKey]struct{}),
		factors:    keyFactors,
	}
}

// run blocks until every view of the job is persisted or a worker failed.
func (js *jobScheduler) run() {
	if err := js.st.SetStatus(js.jobID, store.StatusRunning); err != nil {
		log.Printf("job %d: set running: %v", js.jobID, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < js.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			js.work()
		}()
	}
	wg.Wait()

	status := store.StatusDone
	js.m.Lock()
	if js.failed {
		status = store.StatusFailed
	}
	js.m.Unlock()

	if err := js.st.SetStatus(js.jobID, status); err != nil {
		log.Printf("job %d: set %s: %v", js.jobID, status, err)
	}
	log.Printf("job %d: %s (%d/%d views)", js.jobID, status, js.finishedViews, js.totalViews)
}

// work renders popped views until no work is left.
func (js *jobScheduler) work() {
	for {
		k, found := js.popView()
		if !found {
			return
		}

		v, err := view.One(k.X, k.Y, js.factors[k], k.Zoom,
			js.params.NSamples, js.params.NIterations, js.params.DivergenceLimit)
		if err != nil {
			js.fail(k, err)
			return
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, render.Image(v, js.params.NIterations, js.pal)); err != nil {
			js.fail(k, err)
			return
		}

		ref := store.ViewRef{CX: k.X, CY: k.Y, Zoom: k.Zoom}
		if err := js.st.AddView(js.jobID, ref, buf.Bytes()); err != nil {
			js.fail(k, err)
			return
		}
		js.viewFinished(k)
	}
}

func (js *jobScheduler) popView() (k zoomdive.ViewKey, found bool) {
	js.m.Lock()
	defer js.m.Unlock()

	if js.failed || len(js.unstarted) == 0 {
		return zoomdive.ViewKey{}, false
	}
	for k = range js.unstarted {
		break
	}
	delete(js.unstarted, k)
	js.inProcess[k] = struct{}{}
	return k, true
}

func (js *jobScheduler) viewFinished(k zoomdive.ViewKey) {
	js.m.Lock()
	delete(js.inProcess, k)
	js.finishedViews++
	finished := float32(js.finishedViews) / float32(js.totalViews)
	js.m.Unlock()

	log.Printf("job %d: finished: %f", js.jobID, finished)
}

// fail aborts the whole job; remaining views are abandoned (no recovery, no
// retry, no partial results served as complete).
func (js *jobScheduler) fail(k zoomdive.ViewKey, err error) {
	log.Printf("job %d: view %v failed: %v", js.jobID, k, err)

	js.m.Lock()
	js.failed = true
	delete(js.inProcess, k)
	js.unstarted = make(map[zoomdive.ViewKey]struct{})
	js.m.Unlock()
}
