package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/luispater/wiselenium/driver"
	"github.com/luispater/wiselenium/field"
	"github.com/luispater/wiselenium/page"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

var (
	ErrUnknownAction     = errors.New("unknown action")
	ErrExpectationFailed = errors.New("expectation failed")
)

var (
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	byType       = reflect.TypeOf(driver.By{})
	durationType = reflect.TypeOf(time.Duration(0))
)

type Options struct {
	// Timeout bounds the wait for the scenario title and the page level
	// wait actions.
	Timeout time.Duration
	// Interval separates retries and wait polls.
	Interval time.Duration
	// ScreenshotDir receives failure and on demand screenshots; none are
	// taken when empty.
	ScreenshotDir string
	// BaseURL resolves relative scenario URLs.
	BaseURL string
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Interval <= 0 {
		o.Interval = page.DefaultInterval
	}
	return o
}

// Runner runs scenarios against drivers.
type Runner struct {
	opts Options
}

func NewRunner(opts Options) *Runner {
	return &Runner{opts: opts.withDefaults()}
}

type StepResult struct {
	Index      int
	Field      string
	Action     string
	Value      any
	Attempts   int
	Err        error
	Screenshot string
	Duration   time.Duration
}

func (s StepResult) Passed() bool {
	return s.Err == nil
}

type ScenarioResult struct {
	Name     string
	URL      string
	Steps    []StepResult
	Err      error
	Duration time.Duration
}

func (s *ScenarioResult) Passed() bool {
	return s.Err == nil
}

// scenarioRun is the state of one scenario against one driver.
type scenarioRun struct {
	opts      Options
	scenario  *Scenario
	driver    driver.Driver
	page      *pageActions
	fields    map[string]any
	variables map[string]any
}

// Run opens the scenario URL, binds its fields and executes its steps in
// order, stopping at the first failing step.
func (r *Runner) Run(ctx context.Context, d driver.Driver, scenario *Scenario) (*ScenarioResult, error) {
	start := time.Now()
	result := &ScenarioResult{Name: scenario.Name, URL: scenario.URL}
	err := r.run(ctx, d, scenario, result)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		return result, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	log.Infof("scenario %s passed in %s", scenario.Name, result.Duration)
	return result, nil
}

func (r *Runner) run(ctx context.Context, d driver.Driver, scenario *Scenario, result *ScenarioResult) error {
	sr := &scenarioRun{
		opts:      r.opts,
		scenario:  scenario,
		driver:    d,
		page:      &pageActions{Page: page.New(d), opts: r.opts},
		fields:    make(map[string]any, len(scenario.Fields)),
		variables: make(map[string]any),
	}

	if scenario.URL != "" {
		target, err := resolveURL(r.opts.BaseURL, scenario.URL)
		if err != nil {
			return err
		}
		if err = sr.page.Get(target); err != nil {
			return fmt.Errorf("failed to open %s: %w", target, err)
		}
	}
	if scenario.Title != "" {
		err := page.NewWait(d, r.opts.Timeout).WithInterval(r.opts.Interval).UntilContext(ctx, page.TitleIs(scenario.Title))
		if err != nil {
			return fmt.Errorf("page title is not %q: %w", scenario.Title, err)
		}
	}
	if err := sr.bindFields(); err != nil {
		return err
	}

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		stepResult := sr.runStep(ctx, i, step)
		result.Steps = append(result.Steps, stepResult)
		if stepResult.Err != nil {
			return fmt.Errorf("step %d %s.%s: %w", i, step.target(), step.Action, stepResult.Err)
		}
	}
	return nil
}

func resolveURL(base, ref string) (string, error) {
	if base == "" {
		return ref, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid scenario url %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

func (sr *scenarioRun) bindFields() error {
	for _, f := range sr.scenario.Fields {
		typeName := f.Type
		if typeName == "" {
			typeName = "base"
		}
		t, ok := field.Lookup(typeName)
		if !ok {
			return fmt.Errorf("field %s: unknown type %s (known: %s)", f.Name, typeName, strings.Join(field.Names(), ", "))
		}
		by := driver.IDOrName(f.Name)
		if f.By != "" {
			var err error
			if by, err = driver.ParseBy(f.By); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
		v, err := field.Wrap(t, page.LazyElement(sr.driver, by))
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		sr.fields[f.Name] = v.Interface()
		log.Debugf("scenario %s: field %s bound as %s to %s", sr.scenario.Name, f.Name, typeName, by)
	}
	return nil
}

func (sr *scenarioRun) runStep(ctx context.Context, index int, step ScenarioStep) StepResult {
	start := time.Now()
	result := StepResult{Index: index, Field: step.Field, Action: step.Action}

	var target any = sr.page
	if step.Field != "" {
		target = sr.fields[step.Field]
	}

	for attempt := 0; attempt <= step.Retry; attempt++ {
		if attempt > 0 {
			log.Debugf("retry %d of step %d %s.%s: %v", attempt, index, step.target(), step.Action, result.Err)
			select {
			case <-ctx.Done():
				result.Err = ctx.Err()
				result.Duration = time.Since(start)
				return result
			case <-time.After(sr.opts.Interval):
			}
		}
		result.Attempts = attempt + 1
		result.Value, result.Err = sr.attempt(target, step)
		if result.Err == nil || errors.Is(result.Err, ErrUnknownAction) {
			break
		}
	}

	if result.Err == nil && step.Store != "" {
		sr.variables[step.Store] = result.Value
	}
	if sr.opts.ScreenshotDir != "" && (step.Screenshot || result.Err != nil) {
		name := filepath.Join(sr.opts.ScreenshotDir, fmt.Sprintf("%s-step%d", slug(sr.scenario.Name), index))
		if path, err := page.TakeScreenShot(sr.driver, name); err != nil {
			log.Warnf("screenshot of step %d failed: %v", index, err)
		} else {
			result.Screenshot = path
		}
	}
	result.Duration = time.Since(start)
	return result
}

func (sr *scenarioRun) attempt(target any, step ScenarioStep) (any, error) {
	results, err := sr.executeMethod(target, step.Action, step.Params)
	if err != nil {
		return nil, err
	}
	value, err := splitResults(results)
	if err != nil {
		return nil, err
	}
	value, err = normalize(value)
	if err != nil {
		return nil, err
	}
	want, err := sr.expectation(step.Expect)
	if err != nil {
		return value, err
	}
	if err = checkExpectation(step.ExpectPath, want, value); err != nil {
		return value, err
	}
	return value, nil
}

func (sr *scenarioRun) executeMethod(obj any, methodName string, params []string) ([]reflect.Value, error) {
	method := reflect.ValueOf(obj).MethodByName(methodName)
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: %s on %T", ErrUnknownAction, methodName, obj)
	}

	log.Debugf("execute method: %s", methodName)

	methodType := method.Type()
	numIn := methodType.NumIn()
	variadic := methodType.IsVariadic()
	if (!variadic && len(params) != numIn) || (variadic && len(params) < numIn-1) {
		return nil, fmt.Errorf("%s takes %d parameters, got %d", methodName, numIn, len(params))
	}

	args := make([]reflect.Value, len(params))
	for i, param := range params {
		var paramType reflect.Type
		if variadic && i >= numIn-1 {
			paramType = methodType.In(numIn - 1).Elem()
		} else {
			paramType = methodType.In(i)
		}
		value, err := sr.resolveParam(param, paramType)
		if err != nil {
			return nil, fmt.Errorf("parameter %d of %s: %w", i, methodName, err)
		}
		args[i] = value
	}

	return method.Call(args), nil
}

// variable returns the stored value a #name# reference points to. ok is
// false when s is not a reference.
func (sr *scenarioRun) variable(s string) (v any, ok bool, err error) {
	s = strings.TrimSpace(s)
	if len(s) <= 2 || s[0] != '#' || s[len(s)-1] != '#' {
		return nil, false, nil
	}
	name := s[1 : len(s)-1]
	v, ok = sr.variables[name]
	if !ok {
		return nil, false, fmt.Errorf("undefined variable %s", name)
	}
	return v, true, nil
}

// expectation resolves a #name# reference in expect. A nil result means
// nothing is expected.
func (sr *scenarioRun) expectation(expect any) (*string, error) {
	if expect == nil {
		return nil, nil
	}
	want := fmt.Sprint(expect)
	if s, isString := expect.(string); isString {
		v, ok, err := sr.variable(s)
		if err != nil {
			return nil, err
		}
		if ok {
			want = formatValue(v)
		}
	}
	return &want, nil
}

// resolveParam substitutes #name# variables and converts the result to
// paramType.
func (sr *scenarioRun) resolveParam(param string, paramType reflect.Type) (reflect.Value, error) {
	input := strings.TrimSpace(param)
	v, ok, err := sr.variable(input)
	if err != nil {
		return reflect.Value{}, err
	}
	if ok {
		if v == nil {
			return reflect.Zero(paramType), nil
		}
		rv := reflect.ValueOf(v)
		if rv.Type().AssignableTo(paramType) {
			return rv, nil
		}
		input = fmt.Sprint(v)
	}
	return convertToType(input, paramType)
}

// convertToType converts string input to the specified type
func convertToType(input string, targetType reflect.Type) (reflect.Value, error) {
	switch targetType {
	case byType:
		by, err := driver.ParseBy(input)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(by), nil
	case durationType:
		d, err := time.ParseDuration(input)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert to duration: %w", err)
		}
		return reflect.ValueOf(d), nil
	}

	switch targetType.Kind() {
	case reflect.String:
		return reflect.ValueOf(input).Convert(targetType), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert to integer: %w", err)
		}
		return reflect.ValueOf(val).Convert(targetType), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := strconv.ParseUint(input, 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert to unsigned integer: %w", err)
		}
		return reflect.ValueOf(val).Convert(targetType), nil

	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert to float: %w", err)
		}
		return reflect.ValueOf(val).Convert(targetType), nil

	case reflect.Bool:
		val, err := strconv.ParseBool(input)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert to boolean: %w", err)
		}
		return reflect.ValueOf(val).Convert(targetType), nil

	case reflect.Interface:
		if reflect.TypeOf(input).AssignableTo(targetType) {
			return reflect.ValueOf(input), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("unsupported parameter type: %s", targetType)
}

// splitResults returns the first non error return value, or the first non
// nil error.
func splitResults(results []reflect.Value) (any, error) {
	var value any
	found := false
	for _, r := range results {
		if r.Type() == errorType {
			if !r.IsNil() {
				return nil, r.Interface().(error)
			}
			continue
		}
		if !found {
			value = r.Interface()
			found = true
		}
	}
	return value, nil
}

type valuer interface {
	Value() (string, error)
}

type texter interface {
	Text() (string, error)
}

// normalize turns wrapper values into what scenarios compare against:
// options and inputs by value, other elements by text.
func normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, int, int64, float64, []byte:
		return x, nil
	case valuer:
		return x.Value()
	case texter:
		return x.Text()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		out := make([]any, rv.Len())
		for i := range out {
			n, err := normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}
	return v, nil
}

func checkExpectation(path string, want *string, value any) error {
	if path != "" {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("cannot encode %T for %s: %w", value, path, err)
		}
		res := gjson.GetBytes(data, path)
		if !res.Exists() {
			return fmt.Errorf("%w: path %s not found in %s", ErrExpectationFailed, path, data)
		}
		if want != nil && res.String() != *want {
			return fmt.Errorf("%w: %s is %q, want %q", ErrExpectationFailed, path, res.String(), *want)
		}
		return nil
	}
	if want == nil {
		return nil
	}
	if got := formatValue(value); got != *want {
		return fmt.Errorf("%w: got %q, want %q", ErrExpectationFailed, got, *want)
	}
	return nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		data, err := json.Marshal(x)
		if err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(v)
}

func slug(name string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if s == "" {
		return "scenario"
	}
	return s
}
