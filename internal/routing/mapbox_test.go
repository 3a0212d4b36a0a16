package routing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mission-dispatch/internal/common"
)

func matrixServer(t *testing.T, handler http.HandlerFunc) *MapboxClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewMapboxClient(srv.URL, "test-token", 2*time.Second)
}

// --- DistanceMatrix ---

func TestDistanceMatrix_ParsesRow(t *testing.T) {
	client := matrixServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("access_token"); got != "test-token" {
			t.Errorf("missing access token, got %q", got)
		}
		if got := r.URL.Query().Get("sources"); got != "0" {
			t.Errorf("expected sources=0, got %q", got)
		}
		fmt.Fprint(w, `{"code":"Ok","distances":[[0,1500.5,3200]]}`)
	})

	origin := common.NewLocation(24.7, 46.7)
	dests := []common.Location{common.NewLocation(24.71, 46.71), common.NewLocation(24.72, 46.72)}

	got, err := client.DistanceMatrix(context.Background(), origin, dests)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != 1500.5 || got[1] != 3200 {
		t.Fatalf("unexpected distances: %v", got)
	}
}

func TestDistanceMatrix_EmptyDestinations(t *testing.T) {
	client := matrixServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty destination list")
	})

	got, err := client.DistanceMatrix(context.Background(), common.NewLocation(24.7, 46.7), nil)
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %v, %v", got, err)
	}
}

func TestDistanceMatrix_SizeMismatch(t *testing.T) {
	client := matrixServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"Ok","distances":[[0,1500]]}`)
	})

	dests := []common.Location{common.NewLocation(24.71, 46.71), common.NewLocation(24.72, 46.72)}
	_, err := client.DistanceMatrix(context.Background(), common.NewLocation(24.7, 46.7), dests)
	if !errors.Is(err, ErrMatrixSizeMismatch) {
		t.Fatalf("expected ErrMatrixSizeMismatch, got %v", err)
	}
}

func TestDistanceMatrix_VendorErrorCode(t *testing.T) {
	client := matrixServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"InvalidInput","distances":[]}`)
	})

	_, err := client.DistanceMatrix(context.Background(), common.NewLocation(24.7, 46.7),
		[]common.Location{common.NewLocation(24.71, 46.71)})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestDistanceMatrix_HTTPError(t *testing.T) {
	client := matrixServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.DistanceMatrix(context.Background(), common.NewLocation(24.7, 46.7),
		[]common.Location{common.NewLocation(24.71, 46.71)})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

// --- Directions ---

func TestDistance_ParsesRoute(t *testing.T) {
	client := matrixServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"Ok","routes":[{"distance":8450.2,"duration":912}]}`)
	})

	got, err := client.Distance(context.Background(), common.NewLocation(24.7, 46.7), common.NewLocation(24.8, 46.8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 8450.2 {
		t.Fatalf("expected 8450.2, got %v", got)
	}
}

func TestDuration_ParsesRoute(t *testing.T) {
	client := matrixServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"Ok","routes":[{"distance":8450.2,"duration":912}]}`)
	})

	got, err := client.Duration(context.Background(), common.NewLocation(24.7, 46.7), common.NewLocation(24.8, 46.8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 912 {
		t.Fatalf("expected 912, got %v", got)
	}
}

func TestDistance_NoRoutes(t *testing.T) {
	client := matrixServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"NoRoute","routes":[]}`)
	})

	_, err := client.Distance(context.Background(), common.NewLocation(24.7, 46.7), common.NewLocation(24.8, 46.8))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
