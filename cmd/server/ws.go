package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"zoomdive/internal/store"
)

// progressFrame is one JSON message pushed to websocket clients watching a
// job.
type progressFrame struct {
	JobID    int64  `json:"job_id"`
	Status   string `json:"status"`
	Finished int    `json:"finished_views"`
	Total    int    `json:"total_views"`
}

// jobProgressWS handles GET /ws/jobs/:id. It upgrades to a websocket and
// pushes progress frames until the job reaches a terminal status or the
// client goes away.
func (s *server) jobProgressWS(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}

	ws, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // TODO: tighten in prod
	})
	if err != nil {
		log.Println(err)
		return
	}

	ctx := c.Request.Context()
	conn := websocket.NetConn(ctx, ws, websocket.MessageText)
	defer conn.Close()

	enc := json.NewEncoder(conn)
	for {
		j, err := s.st.JobByID(id)
		if err != nil {
			log.Printf("ws job %d: %v", id, err)
			return
		}
		if err := enc.Encode(progressFrame{
			JobID:    j.ID,
			Status:   j.Status,
			Finished: j.FinishedViews,
			Total:    j.TotalViews,
		}); err != nil {
			return
		}
		if j.Status == store.StatusDone || j.Status == store.StatusFailed {
			return
		}

		// Polling the store for brevity, instead of pushing updates from
		// the scheduler
		select {
		case <-ctx.Done():
			return
		case <-time.After(250 * time.Millisecond):
		}
	}
}
