package blueprint

import (
	"fmt"
	"sort"
	"time"

	"davcal/src-server/ical"
	"davcal/src-server/ical/timezone"
	"davcal/src-server/ical/utils"
	"davcal/src-server/ical/vocab"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Turns blueprints into documents. A Builder is safe to share once created.
type Builder struct {
	registry *timezone.Registry
	when     *when.Parser
	now      func() time.Time
	location *time.Location
	prodID   string
}

type Option func(*Builder)

// Location used for dates without an offset or TZID, UTC by default
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		if loc != nil && loc != time.Local {
			b.location = loc
		}
	}
}

// Reference time for natural language dates and document stamps
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// PRODID used when the blueprint has none
func WithProdID(prodID string) Option {
	return func(b *Builder) {
		b.prodID = prodID
	}
}

func NewBuilder(registry *timezone.Registry, opts ...Option) *Builder {
	b := &Builder{
		registry: registry,
		when:     when.New(nil),
		now:      time.Now,
		location: time.UTC,
		prodID:   ical.DefaultProdID,
	}
	b.when.Add(en.All...)
	b.when.Add(common.All...)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build the document. The error names the failing operation and wraps the
// error kind returned by the ical package.
func (b *Builder) Build(bp *Blueprint) (*ical.Document, error) {
	if bp == nil {
		return nil, utils.InvalidArgument("blueprint is required", nil)
	}
	prodID := bp.ProdID
	if prodID == "" {
		prodID = b.prodID
	}
	doc := ical.NewDocument(b.registry,
		ical.WithProdID(prodID),
		ical.WithMethod(bp.Method),
		ical.WithName(bp.Name),
		ical.WithClock(b.now),
	)

	for i, c := range bp.Events {
		ev := doc.AddEvent()
		if err := b.component(ev, vocab.EntityEvent, c); err != nil {
			return nil, fmt.Errorf("events[%d]%w", i, err)
		}
	}
	for i, c := range bp.Todos {
		todo := doc.AddTodo()
		if err := b.component(todo, vocab.EntityTodo, c); err != nil {
			return nil, fmt.Errorf("todos[%d]%w", i, err)
		}
	}
	return doc, nil
}

type alarmOwner interface {
	ical.Component
	AddAlarm() *ical.Alarm
}

func (b *Builder) component(target alarmOwner, kind vocab.Entity, c Component) error {
	if err := b.run(target.Apply, kind, c.Operations); err != nil {
		return err
	}
	for i, a := range c.Alarms {
		alarm := target.AddAlarm()
		if err := b.run(alarm.Apply, kind, a.Operations); err != nil {
			return fmt.Errorf(".alarms[%d]%w", i, err)
		}
	}
	return nil
}

type applyFunc func(op string, args []any, params ...ical.Param) error

func (b *Builder) run(apply applyFunc, kind vocab.Entity, ops []Operation) error {
	for i, op := range ops {
		args, params, err := b.resolveOperation(kind, op)
		if err == nil {
			err = apply(op.Op, args, params...)
		}
		if err != nil {
			return &OperationError{Index: i, Op: op.Op, Err: err}
		}
	}
	return nil
}

// Failure of a single operation. Unwraps to the underlying error kind.
type OperationError struct {
	Index int
	Op    string
	Err   error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf(".operations[%d] %s: %v", e.Index, e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func (b *Builder) resolveOperation(kind vocab.Entity, op Operation) ([]any, []ical.Param, error) {
	r := &resolver{b: b, kind: kind}
	args := make([]any, 0, len(op.Args)+1)
	for _, raw := range op.Args {
		v, err := r.value(raw)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, v)
	}
	// a lone floating date feeds the floating flag of date setters
	if len(args) == 1 && r.floating {
		if _, ok := args[0].(time.Time); ok {
			args = append(args, true)
		}
	}

	params, err := resolveParams(op.Params)
	if err != nil {
		return nil, nil, err
	}
	if r.dateOnly && !utils.HasParamValue(params, "VALUE", "DATE") {
		params = utils.SetParam(params, "VALUE", "DATE")
	}
	return args, params, nil
}

func resolveParams(raw map[string]any) ([]ical.Param, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]ical.Param, 0, len(names))
	for _, name := range names {
		values, err := stringList(raw[name])
		if err != nil {
			return nil, utils.InvalidArgument("parameter values must be strings", map[string]any{"param": name})
		}
		params = append(params, ical.NewParam(name, values...))
	}
	return params, nil
}
