package model

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/mbolis/quick-forms/store"
)

// TimeFormat is fixed width so stored timestamps sort lexically.
const TimeFormat = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

func (f Form) Record() store.Record {
	return store.Record{
		"id":          f.ID,
		"title":       f.Title,
		"description": nullString(f.Description),
		"published":   f.Published,
		"public_url":  nullString(f.PublicURL),
		"created_at":  formatTime(f.CreatedAt),
		"updated_at":  formatTime(f.UpdatedAt),
	}
}

func FormFromRecord(rec store.Record) (f Form, err error) {
	d := decoder{rec: rec}
	f.ID = d.str("id")
	f.Title = d.str("title")
	f.Description = d.str("description")
	f.Published = d.boolean("published")
	f.PublicURL = d.str("public_url")
	f.CreatedAt = d.timestamp("created_at")
	f.UpdatedAt = d.timestamp("updated_at")
	return f, errors.Wrap(d.err, "model.form")
}

func (q Question) Record() (store.Record, error) {
	var options any
	if q.Options != nil {
		raw, err := json.Marshal(q.Options)
		if err != nil {
			return nil, errors.Wrap(err, "model.question.options")
		}
		options = string(raw)
	}
	return store.Record{
		"id":            q.ID,
		"form_id":       q.FormID,
		"question_text": q.Text,
		"question_type": string(q.Type),
		"required":      q.Required,
		"order_number":  q.OrderNumber,
		"options":       options,
		"created_at":    formatTime(q.CreatedAt),
		"updated_at":    formatTime(q.UpdatedAt),
	}, nil
}

func QuestionFromRecord(rec store.Record) (q Question, err error) {
	d := decoder{rec: rec}
	q.ID = d.str("id")
	q.FormID = d.str("form_id")
	q.Text = d.str("question_text")
	q.Type = QuestionType(d.str("question_type"))
	q.Required = d.boolean("required")
	q.OrderNumber = d.integer("order_number")
	d.unmarshal("options", &q.Options)
	q.CreatedAt = d.timestamp("created_at")
	q.UpdatedAt = d.timestamp("updated_at")
	return q, errors.Wrap(d.err, "model.question")
}

func (r Response) Record() (store.Record, error) {
	data := r.Data
	if data == nil {
		data = map[string]string{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "model.response.data")
	}
	return store.Record{
		"id":            r.ID,
		"form_id":       r.FormID,
		"response_data": string(raw),
		"created_at":    formatTime(r.CreatedAt),
	}, nil
}

func ResponseFromRecord(rec store.Record) (r Response, err error) {
	d := decoder{rec: rec}
	r.ID = d.str("id")
	r.FormID = d.str("form_id")
	d.unmarshal("response_data", &r.Data)
	if r.Data == nil {
		r.Data = map[string]string{}
	}
	r.CreatedAt = d.timestamp("created_at")
	return r, errors.Wrap(d.err, "model.response")
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// decoder reads typed columns out of a record, keeping the first failure.
type decoder struct {
	rec store.Record
	err error
}

func (d *decoder) fail(field string, v any) {
	if d.err == nil {
		d.err = errors.Errorf("field %q: unexpected value %#v", field, v)
	}
}

func (d *decoder) str(field string) string {
	switch v := d.rec[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		d.fail(field, v)
		return ""
	}
}

func (d *decoder) boolean(field string) bool {
	switch v := d.rec[field].(type) {
	case nil:
		return false
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	default:
		d.fail(field, v)
		return false
	}
}

func (d *decoder) integer(field string) int {
	switch v := d.rec[field].(type) {
	case nil:
		return 0
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		d.fail(field, v)
		return 0
	}
}

func (d *decoder) timestamp(field string) time.Time {
	switch v := d.rec[field].(type) {
	case nil:
		return time.Time{}
	case time.Time:
		return v.UTC()
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			d.fail(field, v)
		}
		return t.UTC()
	default:
		d.fail(field, v)
		return time.Time{}
	}
}

func (d *decoder) unmarshal(field string, dst any) {
	raw := d.str(field)
	if raw == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil && d.err == nil {
		d.err = errors.Wrapf(err, "field %q", field)
	}
}
