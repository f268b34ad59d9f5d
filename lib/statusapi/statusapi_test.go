// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package statusapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bureau-foundation/rolesync/lib/cycle"
	"github.com/bureau-foundation/rolesync/lib/testutil"
	"github.com/bureau-foundation/rolesync/lib/tickstate"
)

func newRecorder(t *testing.T, reports ...cycle.TickReport) *tickstate.Recorder {
	t.Helper()
	recorder, err := tickstate.NewRecorder("", nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, report := range reports {
		if err := recorder.Record(report); err != nil {
			t.Fatal(err)
		}
	}
	return recorder
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodGet, path, nil)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	finished := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)

	tests := []struct {
		name      string
		reports   []cycle.TickReport
		ready     func() bool
		wantReady bool
		wantTick  bool
	}{
		{"no session, no ticks", nil, nil, true, false},
		{"session down", nil, func() bool { return false }, false, false},
		{"after a tick", []cycle.TickReport{{ID: "t1", Finished: finished}}, func() bool { return true }, true, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			router := NewRouter(NewHandler(newRecorder(t, test.reports...), test.ready, "1.2.3"), testutil.Logger())
			response := get(t, router, "/healthz")
			if response.Code != http.StatusOK {
				t.Fatalf("status = %d", response.Code)
			}
			var body HealthResponse
			if err := json.Unmarshal(response.Body.Bytes(), &body); err != nil {
				t.Fatalf("decoding: %v", err)
			}
			if body.Status != "ok" || body.Version != "1.2.3" || body.SessionReady != test.wantReady {
				t.Errorf("body = %+v", body)
			}
			if (body.LastTick != nil) != test.wantTick {
				t.Errorf("LastTick = %v, want present=%v", body.LastTick, test.wantTick)
			}
			if test.wantTick && !body.LastTick.Equal(finished) {
				t.Errorf("LastTick = %v, want %v", body.LastTick, finished)
			}
		})
	}
}

func TestLastTick(t *testing.T) {
	gin.SetMode(gin.TestMode)

	empty := NewRouter(NewHandler(newRecorder(t), nil, "dev"), testutil.Logger())
	if response := get(t, empty, "/v1/ticks/last"); response.Code != http.StatusNotFound {
		t.Errorf("status before first tick = %d, want 404", response.Code)
	}

	router := NewRouter(NewHandler(newRecorder(t,
		cycle.TickReport{ID: "t1", Sheets: []cycle.SheetResult{{Title: "Signups"}}},
		cycle.TickReport{ID: "t2", Skipped: true},
	), nil, "dev"), testutil.Logger())
	response := get(t, router, "/v1/ticks/last")
	if response.Code != http.StatusOK {
		t.Fatalf("status = %d", response.Code)
	}
	var record tickstate.Record
	if err := json.Unmarshal(response.Body.Bytes(), &record); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if record.Last.ID != "t2" || record.LastCompleted == nil || record.LastCompleted.ID != "t1" || record.Ticks != 2 {
		t.Errorf("record = %+v", record)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	router := NewRouter(NewHandler(newRecorder(t), nil, "dev"), testutil.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveListener(ctx, listener, router, testutil.Logger()) }()

	response, err := http.Get(fmt.Sprintf("http://%s/healthz", listener.Addr()))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Errorf("status = %d", response.StatusCode)
	}

	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "serve return"); err != nil {
		t.Errorf("serve returned %v", err)
	}
}
