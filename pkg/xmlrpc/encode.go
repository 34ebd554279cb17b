package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
)

// Struct is an XML-RPC struct parameter. Members are encoded in sorted key
// order so request bodies are deterministic.
type Struct map[string]any

// marshalCall renders a complete methodCall document for the given method
// and positional parameters.
func marshalCall(method string, args []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	buf.WriteString("<methodCall><methodName>")
	if err := escape(&buf, method); err != nil {
		return nil, err
	}
	buf.WriteString("</methodName><params>")
	for i, arg := range args {
		buf.WriteString("<param>")
		if err := writeValue(&buf, arg); err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		buf.WriteString("</param>")
	}
	buf.WriteString("</params></methodCall>")
	return buf.Bytes(), nil
}

// writeValue encodes a single <value> element. Supported parameter types
// are string, int, int64, bool, float64, Struct, and []any.
func writeValue(buf *bytes.Buffer, v any) error {
	buf.WriteString("<value>")
	switch arg := v.(type) {
	case string:
		buf.WriteString("<string>")
		if err := escape(buf, arg); err != nil {
			return err
		}
		buf.WriteString("</string>")

	case int:
		buf.WriteString("<int>")
		buf.WriteString(strconv.Itoa(arg))
		buf.WriteString("</int>")

	case int64:
		buf.WriteString("<int>")
		buf.WriteString(strconv.FormatInt(arg, 10))
		buf.WriteString("</int>")

	case bool:
		if arg {
			buf.WriteString("<boolean>1</boolean>")
		} else {
			buf.WriteString("<boolean>0</boolean>")
		}

	case float64:
		buf.WriteString("<double>")
		buf.WriteString(strconv.FormatFloat(arg, 'f', -1, 64))
		buf.WriteString("</double>")

	case Struct:
		buf.WriteString("<struct>")
		keys := make([]string, 0, len(arg))
		for k := range arg {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			buf.WriteString("<member><name>")
			if err := escape(buf, k); err != nil {
				return err
			}
			buf.WriteString("</name>")
			if err := writeValue(buf, arg[k]); err != nil {
				return fmt.Errorf("member %q: %w", k, err)
			}
			buf.WriteString("</member>")
		}
		buf.WriteString("</struct>")

	case []any:
		buf.WriteString("<array><data>")
		for i, elem := range arg {
			if err := writeValue(buf, elem); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		buf.WriteString("</data></array>")

	default:
		return fmt.Errorf("unsupported parameter type %T", v)
	}
	buf.WriteString("</value>")
	return nil
}

func escape(buf *bytes.Buffer, s string) error {
	return xml.EscapeText(buf, []byte(s))
}
