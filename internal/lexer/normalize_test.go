package lexer

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/text/unicode/norm"
)

func TestBOMStripping(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
	}{
		{"with_bom", []byte{0xEF, 0xBB, 0xBF, 'h', 'e', 'l', 'l', 'o'}, []byte("hello")},
		{"without_bom", []byte("hello"), []byte("hello")},
		{"empty_with_bom", []byte{0xEF, 0xBB, 0xBF}, []byte{}},
		{"empty_without_bom", []byte{}, []byte{}},
		{"partial_bom", []byte{0xEF, 0xBB, 'h', 'i'}, []byte{0xEF, 0xBB, 'h', 'i'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.input)
			if !bytes.Equal(result, tt.expected) {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestNFCNormalization(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already_nfc", "café", "café"},
		{"nfd_to_nfc", "café", "café"},
		{"ascii_unchanged", "hello world", "hello world"},
		{"mixed_unicode", "naïve café", "naïve café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := string(Normalize([]byte(tt.input)))
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
			if !norm.NFC.IsNormalString(result) {
				t.Errorf("Result is not in NFC form")
			}
		})
	}
}

func TestBOMAndNFC(t *testing.T) {
	input := append(append([]byte{}, bomUTF8...), []byte("café")...)
	expected := "café"

	result := string(Normalize(input))
	if result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
	if !norm.NFC.IsNormalString(result) {
		t.Errorf("Result is not in NFC form")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"hello", "café", "café", "﻿hello"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first := Normalize([]byte(input))
			second := Normalize(first)
			if !bytes.Equal(first, second) {
				t.Errorf("Normalize is not idempotent: first=%q, second=%q", first, second)
			}
		})
	}
}

func TestNormalizeDeterminism(t *testing.T) {
	input := []byte("﻿café")

	var results [][]byte
	for i := 0; i < 100; i++ {
		results = append(results, Normalize(input))
	}

	baseline := results[0]
	for i, result := range results[1:] {
		if !bytes.Equal(result, baseline) {
			t.Errorf("Iteration %d produced different output", i+1)
		}
	}
}

func TestNormalizeDoesNotCollapseCRLF(t *testing.T) {
	a := Normalize([]byte("café\n"))
	b := Normalize([]byte(strings.ReplaceAll("café\n", "\n", "\r\n")))
	// Normalize does not itself collapse CRLF (that is a lexer concern,
	// out of scope here); it only strips BOM and applies NFC. This test
	// documents that boundary rather than asserting equality.
	if bytes.Equal(a, b) {
		t.Skip("inputs happened to match; CRLF collapsing is not Normalize's job")
	}
}
