package event

import (
	"context"
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// KubeSource reads events from the Kubernetes API.
type KubeSource struct {
	KubeClient kubernetes.Interface
}

func NewKubeSource(client kubernetes.Interface) *KubeSource {
	return &KubeSource{KubeClient: client}
}

// FetchEvents lists the namespace's events and returns the relevant ones for
// workload (every object when workload is empty) observed at or after since.
func (s *KubeSource) FetchEvents(ctx context.Context, namespace, workload string, since time.Time) ([]RawEvent, error) {
	list, err := s.KubeClient.CoreV1().Events(namespace).List(ctx, metav1.ListOptions{})

	if err != nil {
		return nil, fmt.Errorf("error listing events in namespace %s: %w", namespace, err)
	}

	return Filter(list.Items, workload, since), nil
}

// Ready checks that the API server answers a version request.
func (s *KubeSource) Ready(ctx context.Context) error {
	_, err := s.KubeClient.Discovery().ServerVersion()

	return err
}
