// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"maps"

	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/observability"
)

const stageValidate = "pipeline.validate"

// validate runs every candidate through the validator of its type. Rejected
// candidates are dropped with a diagnostic. Accepted ones may be narrowed to
// the refined match, take the higher of both confidences and carry the
// validator's checks. Candidates without a validator, or with spans the
// consolidation pass will reject anyway, pass through untouched.
func (p *Pipeline) validate(runes []rune, candidates []detector.Entity, diags *observability.Diagnostics) []detector.Entity {
	out := candidates[:0]
	for _, e := range candidates {
		if e.Start < 0 || e.End > len(runes) || e.Start >= e.End {
			out = append(out, e)
			continue
		}
		v, ok := p.validators.GetValidatorForType(e.Type)
		if !ok {
			out = append(out, e)
			continue
		}

		r := v.Validate(string(runes[e.Start:e.End]))
		if !r.Valid {
			diags.Record(observability.Diagnostic{
				Kind:       observability.DiagnosticRejected,
				Stage:      stageValidate,
				Message:    "candidate rejected by validator",
				Type:       string(e.Type),
				Start:      e.Start,
				End:        e.End,
				Recognizer: recognizerName(e),
			})
			continue
		}

		if r.Refined() && r.Start >= 0 && r.End <= e.Len() {
			base := e.Start
			e.Start, e.End = base+r.Start, base+r.End
		}
		e.Text = string(runes[e.Start:e.End])
		e.Confidence = max(e.Confidence, r.Confidence)
		if len(r.Checks) > 0 {
			e.SetMeta(detector.MetaValidation, maps.Clone(r.Checks))
		}
		out = append(out, e)
	}
	return out
}

func recognizerName(e detector.Entity) string {
	name, _ := e.Metadata[detector.MetaRecognizer].(string)
	return name
}
