// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"time"

	"go.uber.org/zap"
)

// StandardObserver times pipeline operations and reports them to the logger
// and, when present, to the stage duration histogram.
type StandardObserver struct {
	logger  *zap.Logger
	metrics *Metrics
}

// NewStandardObserver creates an observer. Both arguments may be nil.
func NewStandardObserver(logger *zap.Logger, metrics *Metrics) *StandardObserver {
	return &StandardObserver{logger: OrNop(logger), metrics: metrics}
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, documentID string) func(success bool, fields ...zap.Field) {
	start := time.Now()

	return func(success bool, fields ...zap.Field) {
		duration := time.Since(start)
		if o.metrics != nil {
			o.metrics.StageDuration.WithLabelValues(component, operation).Observe(duration.Seconds())
		}
		if ce := o.logger.Check(zap.DebugLevel, "operation finished"); ce != nil {
			base := []zap.Field{
				zap.String("component", component),
				zap.String("operation", operation),
				zap.String("document_id", documentID),
				zap.Int64("duration_ms", duration.Milliseconds()),
				zap.Bool("success", success),
			}
			ce.Write(append(base, fields...)...)
		}
	}
}
