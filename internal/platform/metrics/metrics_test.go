package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_CountersAndHandler(t *testing.T) {
	c := NewCollector("vetclinic")

	c.ObserveAppointmentOp("create", "ok")
	c.ObserveAppointmentOp("create", "ok")
	c.ObserveAppointmentOp("create", "appointment_already_exists")
	c.ObserveHTTP("GET", "/appointments/{id}", "200", 15*time.Millisecond)

	if got := testutil.ToFloat64(c.AppointmentOpsTotal.WithLabelValues("create", "ok")); got != 2 {
		t.Fatalf("expected 2 ok creates, got %v", got)
	}
	if got := testutil.ToFloat64(c.RequestsTotal.WithLabelValues("GET", "/appointments/{id}", "200")); got != 1 {
		t.Fatalf("expected 1 request, got %v", got)
	}

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "vetclinic_appointments_operations_total") {
		t.Fatalf("expected appointment counter in exposition")
	}
}

func TestCollector_IndependentRegistries(t *testing.T) {
	// Dos collectors en el mismo proceso no deben chocar.
	_ = NewCollector("vetclinic")
	_ = NewCollector("vetclinic")
}
