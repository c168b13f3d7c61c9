// Package observability provides pipeline metrics for semlook runs
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// WriteTextfile writes every registered metric to path in the Prometheus
// text format, for pickup by a node exporter textfile collector. An empty
// path is a no-op.
func WriteTextfile(log logrus.FieldLogger, path string) error {
	if path == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return err
	}

	log.WithField("path", path).Debug("Wrote metrics textfile")

	return nil
}
