// Package cas bridges CAS proxy-granting tickets from the provider's
// asynchronous callback to the service-ticket validation path.
//
// CAS delivers the PGT in two halves on two unrelated connections: the
// validation response carries an IOU identifier, and the provider itself
// invokes a callback URL with the IOU and the actual ticket. Nothing orders
// those calls beyond "the callback eventually happens", so retrieval blocks
// with a timeout instead of assuming the write has landed.
package cas

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gatehouse-auth/gatehouse/pkg/observability"
	"github.com/gatehouse-auth/gatehouse/pkg/store"
)

// DefaultRetrieveTimeout bounds how long the validation path waits for the
// provider callback.
const DefaultRetrieveTimeout = 5 * time.Second

// ProxyGrantingStorage stores PGTs keyed by their IOU.
type ProxyGrantingStorage struct {
	tickets store.Store
	timeout time.Duration
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewProxyGrantingStorage creates PGT storage over the given store. A zero
// timeout means DefaultRetrieveTimeout; metrics may be nil.
func NewProxyGrantingStorage(tickets store.Store, timeout time.Duration, logger *observability.Logger, metrics *observability.Metrics) *ProxyGrantingStorage {
	if timeout <= 0 {
		timeout = DefaultRetrieveTimeout
	}
	return &ProxyGrantingStorage{
		tickets: tickets,
		timeout: timeout,
		logger:  logger.WithField("component", "pgt_storage"),
		metrics: metrics,
	}
}

// StoreTicket records a PGT under its IOU. Called from the provider
// callback.
func (s *ProxyGrantingStorage) StoreTicket(ctx context.Context, iou, pgt string) error {
	if iou == "" || pgt == "" {
		return fmt.Errorf("cas: both pgtIou and pgtId are required")
	}
	if err := s.tickets.Put(ctx, iou, pgt); err != nil {
		return err
	}
	s.count("store")
	s.logger.WithField("pgt_iou", iou).Debug("proxy-granting ticket stored")
	return nil
}

// RetrieveTicket returns the PGT for an IOU, waiting up to the configured
// timeout for the provider callback to arrive. The second return is false
// when the callback never came.
func (s *ProxyGrantingStorage) RetrieveTicket(ctx context.Context, iou string) (string, bool, error) {
	pgt, ok, err := store.GetWait(ctx, s.tickets, iou, s.timeout)
	if err != nil {
		return "", false, err
	}
	if !ok {
		s.count("miss")
		s.logger.WithField("pgt_iou", iou).Warn("no proxy-granting ticket arrived before timeout")
		return "", false, nil
	}
	s.count("retrieve")
	return pgt, true, nil
}

// CallbackHandler returns the HTTP handler the provider invokes with
// pgtIou/pgtId query parameters. CAS probes the URL without parameters
// first to verify reachability; that probe gets a plain 200.
func (s *ProxyGrantingStorage) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iou := r.URL.Query().Get("pgtIou")
		pgt := r.URL.Query().Get("pgtId")

		if iou == "" && pgt == "" {
			w.WriteHeader(http.StatusOK)
			return
		}

		if err := s.StoreTicket(r.Context(), iou, pgt); err != nil {
			s.logger.WithError(err).Warn("failed to store proxy-granting ticket")
			http.Error(w, "storage failure", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (s *ProxyGrantingStorage) count(op string) {
	if s.metrics != nil {
		s.metrics.TicketStoreOpsTotal.WithLabelValues(op).Inc()
	}
}
