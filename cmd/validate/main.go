// Command validate checks an artifact bundle before it is deployed: that it
// loads, that the model columns match the metadata, that every known area
// code and station has a label code, that every known category has its
// indicator column, and that a sample request predicts.
//
// Usage:
//
//	go run ./cmd/validate -dir data/artifacts [-expect SECONDS]
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/lfb-response-predictor/internal/adapter/artifact"
	"github.com/couchcryptid/lfb-response-predictor/internal/domain"
)

// numericFields are model inputs that are never categorical.
var numericFields = []string{
	domain.FieldYear, domain.FieldMonth, domain.FieldDayOfWeek, domain.FieldHour,
	domain.FieldIsWeekend, domain.FieldPumpOrder, domain.FieldDelayCodeID,
}

// categoricalFields are the fields that are either label encoded or one-hot
// expanded, depending on whether the bundle has an encoder for them.
var categoricalFields = []string{
	domain.FieldTimeOfDay, domain.FieldIncidentGroup, domain.FieldPropertyCategory,
	domain.FieldWardCode, domain.FieldBoroughCode, domain.FieldStation,
	domain.FieldDeployedFrom, domain.FieldStopCode,
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", "data/artifacts", "artifact bundle directory")
	expect := flag.Int("expect", -1, "expected seconds for the sample request (-1 skips the check)")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*dir, *expect))
}

func run(dir string, expect int) int {
	fmt.Println("=== Artifact Bundle Validation ===")
	fmt.Println()

	load := &phase{name: "Phase 1: Artifact loading"}
	bundle, err := artifact.Load(dir, artifact.DefaultFiles())
	if err != nil {
		load.errorf("%v", err)
		report([]*phase{load})
		return 1
	}

	phases := []*phase{
		load,
		validateSchemaAlignment(bundle),
		validateEncoderCoverage(bundle),
		validateOneHotCoverage(bundle),
		validateSamplePrediction(bundle, expect),
	}

	fmt.Printf("Columns: %d, encoders: %d, boroughs: %d, wards: %d\n",
		len(bundle.Metadata.ModelColumns), len(bundle.Encoders),
		len(bundle.Metadata.BoroughNameToCode), len(bundle.Metadata.WardNameToCode))

	if report(phases) {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func report(phases []*phase) bool {
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}
	return allPassed
}

// ── Phase 2: Schema Alignment ──
// Every model column must be a numeric field, a label-encoded field or an
// indicator column of a one-hot field.

func validateSchemaAlignment(a domain.Artifacts) *phase {
	p := &phase{name: "Phase 2: Schema alignment"}

	for _, col := range a.Metadata.ModelColumns {
		if slices.Contains(numericFields, col) {
			continue
		}
		if _, ok := a.Encoders[col]; ok {
			continue
		}
		field, value, ok := splitIndicator(col)
		if !ok {
			p.errorf("column %q is not a known field or indicator column", col)
			continue
		}
		if _, encoded := a.Encoders[field]; encoded {
			p.errorf("column %q is an indicator of label-encoded field %s", col, field)
			continue
		}
		if known := a.Metadata.KnownValues(field); len(known) > 0 && !slices.Contains(known, value) {
			p.errorf("column %q has value %q outside the known %s values", col, value, field)
		}
	}

	for name := range a.Encoders {
		if !slices.Contains(a.Metadata.ModelColumns, name) {
			p.errorf("encoder %s has no model column", name)
		}
	}
	return p
}

// splitIndicator splits "{field}_{value}" for the categorical fields. Field
// names themselves contain underscores, so the known prefixes are matched.
func splitIndicator(col string) (field, value string, ok bool) {
	for _, f := range categoricalFields {
		if rest, found := strings.CutPrefix(col, f+"_"); found {
			return f, rest, true
		}
	}
	return "", "", false
}

// ── Phase 3: Encoder Coverage ──
// Every area code and station the form can produce must have a label code.

func validateEncoderCoverage(a domain.Artifacts) *phase {
	p := &phase{name: "Phase 3: Encoder coverage"}

	checks := []struct {
		field  string
		values []string
	}{
		{domain.FieldWardCode, mapValues(a.Metadata.WardNameToCode)},
		{domain.FieldBoroughCode, mapValues(a.Metadata.BoroughNameToCode)},
		{domain.FieldStation, a.Metadata.StationCodes},
	}

	for _, c := range checks {
		enc, ok := a.Encoders[c.field]
		if !ok {
			continue
		}
		for _, v := range c.values {
			if _, err := enc.Transform([]string{v}); err != nil {
				p.errorf("%s: %v", c.field, err)
			}
		}
	}
	return p
}

func mapValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ── Phase 4: One-Hot Coverage ──
// Every known value of a one-hot field must have its indicator column,
// otherwise that value is silently encoded as all zeros.

func validateOneHotCoverage(a domain.Artifacts) *phase {
	p := &phase{name: "Phase 4: One-hot coverage"}

	for _, field := range categoricalFields {
		if _, encoded := a.Encoders[field]; encoded {
			continue
		}
		for _, v := range a.Metadata.KnownValues(field) {
			col := field + "_" + v
			if !slices.Contains(a.Metadata.ModelColumns, col) {
				p.errorf("known %s value %q has no column %q", field, v, col)
			}
		}
	}
	return p
}

// ── Phase 5: Sample Prediction ──
// Predicts the first selectable value of every field on a fixed Saturday
// afternoon.

func validateSamplePrediction(a domain.Artifacts, expect int) *phase {
	p := &phase{name: "Phase 5: Reference prediction"}

	engine, err := domain.NewEngine(a, domain.PolicyStrict)
	if err != nil {
		p.errorf("build engine: %v", err)
		return p
	}

	req, err := sampleRequest(a.Metadata.FormOptions())
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	result, err := engine.Predict(req)
	if err != nil {
		p.errorf("predict %s in %s: %v", req.WardName, req.BoroughName, err)
		return p
	}
	fmt.Printf("  Sample: %s, %s, station %s -> %s\n", req.WardName, req.BoroughName, req.StationCode, result)

	if expect >= 0 && result.TotalSeconds != expect {
		p.errorf("expected %d s, got %d s", expect, result.TotalSeconds)
	}
	return p
}

func sampleRequest(opts domain.FormOptions) (domain.IncidentRequest, error) {
	first := func(name string, values []string) (string, error) {
		if len(values) == 0 {
			return "", errors.New("no selectable " + name)
		}
		return values[0], nil
	}

	req := domain.IncidentRequest{
		CallDate: time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
		CallTime: domain.ClockTime{Hour: 14},
	}
	var (
		errs []error
		err  error
	)
	if req.BoroughName, err = first("boroughs", opts.Boroughs); err != nil {
		errs = append(errs, err)
	}
	if req.WardName, err = first("wards", opts.Wards); err != nil {
		errs = append(errs, err)
	}
	if req.StationCode, err = first("stations", opts.Stations); err != nil {
		errs = append(errs, err)
	}
	if req.IncidentGroup, err = first("incident groups", opts.IncidentGroups); err != nil {
		errs = append(errs, err)
	}
	if req.PropertyCategory, err = first("property categories", opts.PropertyCategories); err != nil {
		errs = append(errs, err)
	}
	if req.DeployedFrom, err = first("deployed locations", opts.DeployedLocations); err != nil {
		errs = append(errs, err)
	}
	return req, errors.Join(errs...)
}
