package alert

import (
	"net/http"
	"time"

	"github.com/kubelab/log-aggregator/api/server/config"
	"github.com/kubelab/log-aggregator/api/server/shared"
	"github.com/kubelab/log-aggregator/api/server/shared/apierrors"
	"github.com/kubelab/log-aggregator/api/server/types"
	"github.com/kubelab/log-aggregator/pkg/summary"
)

// MarkDayCompleteHandler deletes every alert context that fired on the given
// day. Fetch the daily summary first: nothing of that day survives.
type MarkDayCompleteHandler struct {
	resultWriter shared.ResultWriter
	config       *config.Config
}

func NewMarkDayCompleteHandler(config *config.Config) *MarkDayCompleteHandler {
	return &MarkDayCompleteHandler{
		resultWriter: shared.NewDefaultResultWriter(),
		config:       config,
	}
}

func (h *MarkDayCompleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	date, err := summary.ParseDate(r.URL.Query().Get("date"), time.Now())

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrPassThroughToClient(err, http.StatusBadRequest), true)
		return
	}

	deleted, err := h.config.Sweeper.PurgeDay(date)

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err), true)
		return
	}

	h.resultWriter.WriteResult(w, r, &types.MarkDayCompleteResponse{
		Status:  "complete",
		Date:    date.Format("2006-01-02"),
		Deleted: deleted,
	})
}
