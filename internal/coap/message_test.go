package coap

import (
	"bytes"
	"testing"
)

func TestMarshalParseRequest(t *testing.T) {
	m := NewGet("/riot/board")
	m.MessageID = 0x1234
	m.Token = []byte{0x01, 0x00}
	m.AddOption(OptionBlock2, []byte{0x05})

	got, err := Parse(m.Marshal())
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != Confirmable || got.Code != GET {
		t.Errorf("type/code = %v/%v", got.Type, got.Code)
	}
	if got.MessageID != 0x1234 {
		t.Errorf("mid = 0x%04x", got.MessageID)
	}
	if !bytes.Equal(got.Token, []byte{0x01, 0x00}) {
		t.Errorf("token = %x", got.Token)
	}
	if got.Path() != "/riot/board" {
		t.Errorf("path = %q", got.Path())
	}

	var block2 []byte
	for _, o := range got.Options {
		if o.Number == OptionBlock2 {
			block2 = o.Value
		}
	}
	if !bytes.Equal(block2, []byte{0x05}) {
		t.Errorf("block2 = %x", block2)
	}
}

func TestMarshalParsePiggybackedResponse(t *testing.T) {
	m := &Message{
		Type:      Acknowledgement,
		Code:      Content,
		MessageID: 7,
		Token:     []byte{0xAB},
		Payload:   []byte("native/64-bit"),
	}
	got, err := Parse(m.Marshal())
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != Acknowledgement || got.Code != Content {
		t.Errorf("type/code = %v/%v", got.Type, got.Code)
	}
	if string(got.Payload) != "native/64-bit" {
		t.Errorf("payload = %q", got.Payload)
	}
}

func TestParseEmptyReset(t *testing.T) {
	got, err := Parse(NewReset(0xBEEF).Marshal())
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != Reset || got.Code != Empty || got.MessageID != 0xBEEF {
		t.Errorf("got %+v", got)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", []byte{0x40, 0x01}},
		{"bad version", []byte{0x00, 0x01, 0x00, 0x01}},
		{"token length 9", []byte{0x49, 0x01, 0x00, 0x01}},
		{"token truncated", []byte{0x42, 0x01, 0x00, 0x01, 0xAA}},
		{"option reserved nibble", []byte{0x40, 0x01, 0x00, 0x01, 0xF1, 0x00}},
		{"option truncated", []byte{0x40, 0x01, 0x00, 0x01, 0xB5, 'a'}},
		{"payload marker only", []byte{0x40, 0x01, 0x00, 0x01, 0xFF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.data); err == nil {
				t.Errorf("Parse(%x) accepted malformed input", tt.data)
			}
		})
	}
}

func TestLongOptionValues(t *testing.T) {
	m := &Message{Type: NonConfirmable, Code: POST, MessageID: 1}
	long := bytes.Repeat([]byte{'x'}, 300) // forces the 14/extended-2 length form
	m.AddOption(OptionUriPath, long)
	m.AddOption(2049, []byte{0x01}) // forces the extended delta form

	got, err := Parse(m.Marshal())
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Options) != 2 {
		t.Fatalf("got %d options", len(got.Options))
	}
	if got.Options[0].Number != OptionUriPath || !bytes.Equal(got.Options[0].Value, long) {
		t.Errorf("option 0 = %d len %d", got.Options[0].Number, len(got.Options[0].Value))
	}
	if got.Options[1].Number != 2049 {
		t.Errorf("option 1 number = %d", got.Options[1].Number)
	}
}

func TestSetPathRoot(t *testing.T) {
	m := NewGet("/")
	if len(m.Options) != 0 {
		t.Errorf("GET / produced options: %v", m.Options)
	}
	if m.Path() != "/" {
		t.Errorf("Path() = %q", m.Path())
	}
}

func TestCodeClassification(t *testing.T) {
	if !GET.IsRequest() || GET.IsResponse() {
		t.Error("GET misclassified")
	}
	if !Content.IsResponse() || Content.IsRequest() {
		t.Error("2.05 misclassified")
	}
	if !NotFound.IsResponse() {
		t.Error("4.04 misclassified")
	}
	if Empty.IsRequest() || Empty.IsResponse() {
		t.Error("0.00 misclassified")
	}
	if got := NotFound.String(); got != "4.04" {
		t.Errorf("NotFound.String() = %q", got)
	}
}
