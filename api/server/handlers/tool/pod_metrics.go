package tool

import (
	"errors"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/kubelab/log-aggregator/api/server/config"
	"github.com/kubelab/log-aggregator/api/server/shared"
	"github.com/kubelab/log-aggregator/api/server/shared/apierrors"
	"github.com/kubelab/log-aggregator/api/server/types"
)

const (
	metricsLookback = 5 * time.Minute
	bytesPerMiB     = 1024 * 1024
)

type GetPodMetricsHandler struct {
	decoderValidator shared.RequestDecoderValidator
	resultWriter     shared.ResultWriter
	config           *config.Config
}

func NewGetPodMetricsHandler(config *config.Config) *GetPodMetricsHandler {
	return &GetPodMetricsHandler{
		resultWriter:     shared.NewDefaultResultWriter(),
		decoderValidator: shared.NewDefaultRequestDecoderValidator(config.Logger),
		config:           config,
	}
}

func (h *GetPodMetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := &types.GetPodMetricsRequest{}

	if ok := h.decoderValidator.DecodeAndValidate(w, r, req); !ok {
		return
	}

	if h.config.Metrics == nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrPassThroughToClient(
			errors.New("prometheus is not configured"),
			http.StatusServiceUnavailable,
		), true)
		return
	}

	end := time.Now().UTC()

	metrics, err := h.config.Metrics.FetchPodMetrics(r.Context(), req.Namespace, req.Pod, end.Add(-metricsLookback), end)

	if err != nil {
		apierrors.HandleAPIError(h.config.Logger, w, r, apierrors.NewErrInternal(err), true)
		return
	}

	h.resultWriter.WriteResult(w, r, &types.GetPodMetricsResponse{
		Namespace:  req.Namespace,
		Pod:        req.Pod,
		Containers: latestUsage(metrics),
	})
}

// latestUsage reduces each container's series to its most recent sample.
func latestUsage(metrics *types.PodMetrics) []types.ContainerUsage {
	res := []types.ContainerUsage{}

	if metrics.IsEmpty() {
		return res
	}

	byContainer := make(map[string]*types.ContainerUsage)

	usage := func(container string) *types.ContainerUsage {
		u, ok := byContainer[container]

		if !ok {
			u = &types.ContainerUsage{Container: container}
			byContainer[container] = u
		}

		return u
	}

	for _, series := range metrics.CPU {
		if v, ok := latest(series); ok {
			cores := round(v, 4)
			usage(series.Container).CPUCores = &cores
		}
	}

	for _, series := range metrics.Memory {
		if v, ok := latest(series); ok {
			mib := round(v/bytesPerMiB, 2)
			usage(series.Container).MemoryMiB = &mib
		}
	}

	for _, u := range byContainer {
		res = append(res, *u)
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].Container < res[j].Container
	})

	return res
}

func latest(series types.ContainerSeries) (float64, bool) {
	if len(series.Values) == 0 {
		return 0, false
	}

	last := series.Values[0]

	for _, s := range series.Values[1:] {
		if !s.Timestamp.Before(last.Timestamp) {
			last = s
		}
	}

	return last.Value, true
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))

	return math.Round(v*p) / p
}
