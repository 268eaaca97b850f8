package types

import "encoding/json"

// ActionPayload and Params are embedded in Msgs as JSON-encoded bytes fields.
// The methods below satisfy gogoproto's customtype contract for the binary
// codec and jsonpb for the JSON one.

type (
	actionPayloadJSON ActionPayload
	paramsJSON        Params
)

func (p ActionPayload) MarshalJSON() ([]byte, error) { return json.Marshal(actionPayloadJSON(p)) }

func (p *ActionPayload) UnmarshalJSON(bz []byte) error {
	return json.Unmarshal(bz, (*actionPayloadJSON)(p))
}

func (p *ActionPayload) Marshal() ([]byte, error) { return json.Marshal(p) }

func (p *ActionPayload) Unmarshal(bz []byte) error {
	*p = ActionPayload{}
	if len(bz) == 0 {
		return nil
	}
	return json.Unmarshal(bz, p)
}

func (p *ActionPayload) Size() int {
	bz, err := p.Marshal()
	if err != nil {
		return 0
	}
	return len(bz)
}

func (p Params) MarshalJSON() ([]byte, error) { return json.Marshal(paramsJSON(p)) }

func (p *Params) UnmarshalJSON(bz []byte) error { return json.Unmarshal(bz, (*paramsJSON)(p)) }

func (p *Params) Marshal() ([]byte, error) { return json.Marshal(p) }

func (p *Params) Unmarshal(bz []byte) error {
	*p = Params{}
	if len(bz) == 0 {
		return nil
	}
	return json.Unmarshal(bz, p)
}

func (p *Params) Size() int {
	bz, err := p.Marshal()
	if err != nil {
		return 0
	}
	return len(bz)
}
