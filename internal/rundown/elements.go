package rundown

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"vizmse/internal/logging"
	"vizmse/internal/pep"
	"vizmse/internal/services"
)

// InternalElement describes an internal element that was created.
type InternalElement struct {
	Name     string            `json:"name"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
	Channel  string            `json:"channel,omitempty"`
}

// ExternalElement describes an external element reference that was created.
type ExternalElement struct {
	VCPID   string `json:"vcpid"`
	Channel string `json:"channel,omitempty"`
}

// Element is the result of an element lookup.
type Element struct {
	Ref     ElementRef `json:"ref"`
	Name    string     `json:"name,omitempty"`
	VCPID   string     `json:"vcpid,omitempty"`
	Channel string     `json:"channel,omitempty"`
	Entry   *pep.Entry `json:"-"`
}

// ElementSpec requests creation of an element in either namespace.
type ElementSpec struct {
	Ref      ElementRef
	Template string
	Fields   []string
	Channel  string
}

// Created is the outcome of Create.
type Created struct {
	Ref      ElementRef        `json:"ref"`
	Template string            `json:"template,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
	Channel  string            `json:"channel,omitempty"`
}

// CreateInternal builds an element from template under the show. values are
// assigned to the template's fields in ascending field-name order; missing
// trailing values become empty strings.
func (r *Rundown) CreateInternal(ctx context.Context, template, name string, values []string, channel string) (*InternalElement, error) {
	logger := r.opLogger(ctx, "create internal")
	if strings.TrimSpace(name) == "" {
		return nil, services.Wrap(services.ErrUsage, "rundown", "create internal", "element name is required", nil)
	}
	_, err := r.GetElement(ctx, Internal(name))
	switch {
	case err == nil:
		return nil, services.Wrap(services.ErrConflict, "rundown", "create internal",
			fmt.Sprintf("an internal graphics element with name %q already exists", name), nil)
	case errors.Is(err, services.ErrNotFound):
	default:
		return nil, err
	}

	tmpl, err := r.GetTemplate(ctx, template)
	if err != nil {
		return nil, err
	}
	if len(values) > len(tmpl.Fields) {
		return nil, services.Wrap(services.ErrUsage, "rundown", "create internal",
			fmt.Sprintf("for template %q with %d field(s), %d values have been provided", template, len(tmpl.Fields), len(values)), nil)
	}

	fields := tmpl.SortedFields()
	data := make(map[string]string, len(fields))
	dataNode := pep.NewNode("entry", "name", "data")
	for i, field := range fields {
		value := ""
		if i < len(values) {
			value = values[i]
		}
		data[field] = value
		dataNode.Append(pep.NewNode("entry", "name", field).WithText(value))
	}

	element := pep.NewNode("element",
		"name", name,
		"guid", uuid.New().String(),
		"updated", r.now().UTC().Format(timestampLayout),
		"creator", r.creator,
	).Append(
		pep.NewNode("ref", "name", "master_template").WithText(r.templatePath(template)),
		pep.NewNode("entry", "name", "default_alternatives"),
		dataNode,
	)
	if _, err := r.pep().Insert(ctx, r.showElementPath(name), element.XML(), pep.LocationLast); err != nil {
		return nil, err
	}
	logger.Info("internal element created",
		logging.String("element", name),
		logging.String("template", template),
		logging.Int("fields", len(fields)),
	)
	return &InternalElement{Name: name, Template: template, Data: data, Channel: channel}, nil
}

// timestampLayout is ISO-8601 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// CreateExternal adds a reference to external element vcpid at the end of the
// playlist and records its channel in the channel map. The binding is
// dropped again when the insert fails.
func (r *Rundown) CreateExternal(ctx context.Context, vcpid int, channel string) (*ExternalElement, error) {
	r.channels.Set(vcpid, channel)

	ref := pep.NewNode("ref", "available", "0.00", "loaded", "0.00", "take_count", "0")
	if channel != "" {
		ref.SetAttr("viz_program", channel)
	}
	ref.WithText(externalElementPath(vcpid))
	if _, err := r.pep().Insert(ctx, r.playlistElementsPath()+"/", ref.XML(), pep.LocationLast); err != nil {
		r.channels.Invalidate(vcpid)
		return nil, err
	}
	r.opLogger(ctx, "create external").Info("external element added",
		logging.Int("vcpid", vcpid),
		logging.String("channel", channel),
	)
	return &ExternalElement{VCPID: strconv.Itoa(vcpid), Channel: channel}, nil
}

// Create dispatches on the kind of spec.Ref.
func (r *Rundown) Create(ctx context.Context, spec ElementSpec) (*Created, error) {
	switch spec.Ref.Kind {
	case KindExternal:
		if _, err := r.CreateExternal(ctx, spec.Ref.VCPID, spec.Channel); err != nil {
			return nil, err
		}
		return &Created{Ref: spec.Ref, Channel: spec.Channel}, nil
	case KindInternal:
		if strings.TrimSpace(spec.Template) == "" {
			return nil, services.Wrap(services.ErrUsage, "rundown", "create", "template is required for internal elements", nil)
		}
		el, err := r.CreateInternal(ctx, spec.Template, spec.Ref.Name, spec.Fields, spec.Channel)
		if err != nil {
			return nil, err
		}
		return &Created{Ref: spec.Ref, Template: el.Template, Data: el.Data, Channel: el.Channel}, nil
	default:
		return nil, services.Wrap(services.ErrUsage, "rundown", "create", fmt.Sprintf("unknown element kind %d", spec.Ref.Kind), nil)
	}
}

// GetElement looks up an element by reference.
func (r *Rundown) GetElement(ctx context.Context, ref ElementRef) (*Element, error) {
	if err := r.engine.CheckConnection(ctx); err != nil {
		return nil, err
	}
	if ref.IsExternal() {
		return r.getExternal(ctx, ref.VCPID)
	}
	return r.getInternal(ctx, ref.Name)
}

func (r *Rundown) getInternal(ctx context.Context, name string) (*Element, error) {
	res, err := r.pep().GetJS(ctx, r.showElementPath(name), -1)
	if err != nil {
		return nil, err
	}
	entry := pep.Flatten(res.Tree)
	entry.SetAttr("name", name)
	return &Element{Ref: Internal(name), Name: name, Entry: entry}, nil
}

func (r *Rundown) getExternal(ctx context.Context, vcpid int) (*Element, error) {
	res, err := r.pep().GetJS(ctx, r.playlistElementsPath(), 2)
	if err != nil {
		return nil, err
	}
	elements := pep.Flatten(res.Tree)
	suffix := "/" + strconv.Itoa(vcpid)
	for _, key := range elements.ChildKeys() {
		entry := elements.Child(key)
		if !strings.HasSuffix(entry.Value, suffix) {
			continue
		}
		id := strconv.Itoa(vcpid)
		entry.SetAttr("vcpid", id)
		channel, _ := entry.Attr("viz_program")
		if channel != "" {
			entry.SetAttr("channel", channel)
		}
		return &Element{Ref: External(vcpid), VCPID: id, Channel: channel, Entry: entry}, nil
	}
	return nil, &pep.InexistentError{
		RequestID: res.ID,
		Path:      fmt.Sprintf("%s#%d", r.playlistElementsPath(), vcpid),
	}
}

func (r *Rundown) resolveChannel(ctx context.Context, vcpid int) (string, error) {
	el, err := r.GetElement(ctx, External(vcpid))
	if err != nil {
		return "", err
	}
	return el.Channel, nil
}

// ListElements returns internal element names from the show followed by
// external ids referenced by the playlist. An id referenced more than once is
// listed once.
func (r *Rundown) ListElements(ctx context.Context) ([]ElementRef, error) {
	if err := r.engine.CheckConnection(ctx); err != nil {
		return nil, err
	}

	var showTree, playlistTree *pep.Node
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := r.pep().GetJS(gctx, r.showElementsPath(), 1)
		if err != nil {
			return err
		}
		showTree = res.Tree
		return nil
	})
	g.Go(func() error {
		res, err := r.pep().GetJS(gctx, r.playlistElementsPath(), 2)
		if err != nil {
			return err
		}
		playlistTree = res.Tree
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	show := pep.Flatten(showTree)
	refs := make([]ElementRef, 0, len(show.Keys))
	for _, key := range show.ChildKeys() {
		if key == "name" {
			continue
		}
		refs = append(refs, Internal(key))
	}

	seen := make(map[int]struct{})
	playlist := pep.Flatten(playlistTree)
	for _, key := range playlist.ChildKeys() {
		value := playlist.Child(key).Value
		id, err := strconv.Atoi(value[strings.LastIndex(value, "/")+1:])
		if err != nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		refs = append(refs, External(id))
	}
	return refs, nil
}

// DeleteElement removes an internal element from the show. External
// references cannot be deleted by id and return services.ErrNotImplemented.
func (r *Rundown) DeleteElement(ctx context.Context, ref ElementRef) error {
	if ref.IsExternal() {
		return services.Wrap(services.ErrNotImplemented, "rundown", "delete element",
			fmt.Sprintf("deleting external element %d by vcpid", ref.VCPID), nil)
	}
	if _, err := r.pep().Delete(ctx, r.showElementPath(ref.Name)); err != nil {
		return err
	}
	r.opLogger(ctx, "delete element").Info("internal element deleted", logging.String("element", ref.Name))
	return nil
}
