package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON binds the request body into out and, on failure, responds with a
// field-level 400 so clients see json names rather than Go struct fields.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	if err := ctx.ShouldBindJSON(out); err != nil {
		RespondBadRequest(ctx, "Invalid request body", bindErrorDetails(err, out))
		return false
	}

	return true
}

func bindErrorDetails(err error, out interface{}) interface{} {
	root := structTypeOf(out)

	var vErrs validator.ValidationErrors

	if errors.As(err, &vErrs) {
		fields := make([]FieldError, 0, len(vErrs))

		for _, fe := range vErrs {
			fields = append(fields, FieldError{
				Field:   jsonFieldPath(root, fe.StructNamespace(), fe.Field()),
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: messageFor(fe.Tag(), fe.Param()),
			})
		}

		return gin.H{"fields": fields}
	}

	var synErr *json.SyntaxError

	if errors.As(err, &synErr) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	var typeErr *json.UnmarshalTypeError

	if errors.As(err, &typeErr) {
		field := jsonFieldPath(root, typeErr.Field, typeErr.Field)

		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{{
				Field:   field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s", typeErr.Type.String()),
			}},
		}
	}

	return gin.H{"reason": err.Error()}
}

func structTypeOf(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	return t
}

// jsonFieldPath rewrites a dotted struct namespace like
// "MarkAttendanceRequest.StudentRecords[1].Status" into the json path
// "studentRecords[1].status". Segments that cannot be resolved against the
// bound type keep their Go names; fallback is used when nothing resolves.
func jsonFieldPath(root reflect.Type, namespace, fallback string) string {
	segments := strings.Split(strings.TrimSpace(namespace), ".")

	if len(segments) > 0 && root != nil && segments[0] == root.Name() {
		segments = segments[1:]
	}

	if len(segments) == 0 {
		return fallback
	}

	var path strings.Builder
	cursor := root

	for i, segment := range segments {
		if segment == "" {
			continue
		}

		name := segment
		index := ""

		if bracket := strings.Index(segment, "["); bracket >= 0 {
			name, index = segment[:bracket], segment[bracket:]
		}

		next, jsonName := lookupField(cursor, name)

		if i > 0 {
			path.WriteByte('.')
		}
		path.WriteString(jsonName)
		path.WriteString(index)

		cursor = next
	}

	if path.Len() == 0 {
		return fallback
	}

	return path.String()
}

// lookupField resolves one struct field by Go name, returning the element
// type to descend into next and the field's json name (or the Go name when
// the type or tag gives nothing better).
func lookupField(t reflect.Type, name string) (reflect.Type, string) {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
			continue
		}
		break
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil, name
	}

	sf, ok := t.FieldByName(name)

	if !ok {
		return nil, name
	}

	tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")

	if tag == "" || tag == "-" {
		tag = sf.Name
	}

	return sf.Type, tag
}

func messageFor(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	}

	if param != "" {
		return fmt.Sprintf("failed %s validation (%s)", rule, param)
	}

	return "failed " + rule + " validation"
}
