package event

import (
	"dialog-hub/errors"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	req := require.New(t)

	in, err := Decode([]byte(`{"type":"send","dialog_id":7,"text":"hi"}`))
	req.NoError(err)
	req.Equal(Send{DialogID: 7, Text: "hi"}, in)

	in, err = Decode([]byte(`{"type":"read","dialog_id":7,"up_to_sequence":3}`))
	req.NoError(err)
	req.Equal(Read{DialogID: 7, UpToSequence: 3}, in)

	in, err = Decode([]byte(`{"type":"typing","dialog_id":7}`))
	req.NoError(err)
	req.EqualValues(7, DialogOf(in))

	in, err = Decode([]byte(`{"type":"ping"}`))
	req.NoError(err)
	req.Equal(Ping{}, in)
	req.Zero(DialogOf(in))
}

func TestDecode_Rejects(t *testing.T) {
	frames := []string{
		`not json`,
		`{}`,
		`{"type":"shout"}`,
		`{"type":"send","text":"no dialog"}`,
		`{"type":"send","dialog_id":7}`,
		`{"type":"send","dialog_id":-1,"text":"hi"}`,
		`{"type":"read","dialog_id":7}`,
		`{"type":"typing"}`,
		`{"type":"send","dialog_id":"seven","text":"hi"}`,
	}
	for _, frame := range frames {
		t.Run(frame, func(t *testing.T) {
			_, err := Decode([]byte(frame))
			require.ErrorIs(t, err, errors.ErrProtocol)
		})
	}
}

func TestNewError_HidesInternalCauses(t *testing.T) {
	req := require.New(t)

	e := NewError(fmt.Errorf("disk on fire"), 3)
	req.Equal(errors.CodeInternal, e.Code)
	req.Equal("internal error", e.Message)

	e = NewError(fmt.Errorf("%w: by 2", errors.ErrBlocked), 3)
	req.Equal(errors.CodeBlocked, e.Code)
	req.Contains(e.Message, "blocked")
	req.EqualValues(3, e.DialogID)
}

func TestOutboundShapes(t *testing.T) {
	req := require.New(t)

	raw, err := json.Marshal(NewReadReceipt(7, 4, 2))
	req.NoError(err)
	req.JSONEq(`{"type":"read_receipt","dialog_id":7,"up_to_sequence":4,"by":2}`, string(raw))

	raw, err = json.Marshal(NewPresence(2, Online))
	req.NoError(err)
	req.JSONEq(`{"type":"presence","user_id":2,"state":"online"}`, string(raw))

	raw, err = json.Marshal(NewPong())
	req.NoError(err)
	req.JSONEq(`{"type":"pong"}`, string(raw))
}
