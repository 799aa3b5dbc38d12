package fsm

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire type tags used by the diagram editor.
const (
	wireStartLink = "StartLink"
	wireLink      = "Link"
	wireSelfLink  = "SelfLink"
)

type wireAutomaton struct {
	Nodes []Node            `json:"nodes"`
	Links []json.RawMessage `json:"links"`
}

type wireTag struct {
	Type string `json:"type"`
}

type wireStart struct {
	Type   string `json:"type"`
	Node   int    `json:"node"`
	Text   string `json:"text"`
	DeltaX int    `json:"deltaX"`
	DeltaY int    `json:"deltaY"`
}

type wireEdge struct {
	Type              string  `json:"type"`
	NodeA             int     `json:"nodeA"`
	NodeB             int     `json:"nodeB"`
	Text              string  `json:"text"`
	LineAngleAdjust   float64 `json:"lineAngleAdjust"`
	ParallelPart      float64 `json:"parallelPart"`
	PerpendicularPart float64 `json:"perpendicularPart"`
}

type wireSelf struct {
	Type        string  `json:"type"`
	Node        int     `json:"node"`
	Text        string  `json:"text"`
	AnchorAngle float64 `json:"anchorAngle"`
}

// MarshalJSON encodes the automaton in the editor's wire format.
func (a Automaton) MarshalJSON() ([]byte, error) {
	w := wireAutomaton{
		Nodes: a.Nodes,
		Links: make([]json.RawMessage, 0, len(a.Transitions)),
	}
	if w.Nodes == nil {
		w.Nodes = []Node{}
	}
	for i, t := range a.Transitions {
		raw, err := marshalTransition(t)
		if err != nil {
			return nil, fmt.Errorf("links[%d]: %w", i, err)
		}
		w.Links = append(w.Links, raw)
	}
	return json.Marshal(w)
}

func marshalTransition(t Transition) ([]byte, error) {
	switch t := t.(type) {
	case Start:
		return json.Marshal(wireStart{
			Type:   wireStartLink,
			Node:   t.To,
			Text:   t.Text,
			DeltaX: t.Layout.DeltaX,
			DeltaY: t.Layout.DeltaY,
		})
	case Edge:
		if t.Layout.Self && t.From == t.To {
			return json.Marshal(wireSelf{
				Type:        wireSelfLink,
				Node:        t.From,
				Text:        t.Text,
				AnchorAngle: t.Layout.AnchorAngle,
			})
		}
		return json.Marshal(wireEdge{
			Type:              wireLink,
			NodeA:             t.From,
			NodeB:             t.To,
			Text:              t.Text,
			LineAngleAdjust:   t.Layout.LineAngleAdjust,
			ParallelPart:      t.Layout.ParallelPart,
			PerpendicularPart: t.Layout.PerpendicularPart,
		})
	default:
		return nil, fmt.Errorf("unsupported transition type %T", t)
	}
}

// UnmarshalJSON decodes the editor's wire format.
//
// Unknown link types and negative node indices are rejected here; indices
// past the end of the node list are accepted and reported by Validate.
func (a *Automaton) UnmarshalJSON(data []byte) error {
	var w wireAutomaton
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := Automaton{Nodes: w.Nodes}
	if out.Nodes == nil {
		out.Nodes = []Node{}
	}
	out.Transitions = make([]Transition, 0, len(w.Links))
	for i, raw := range w.Links {
		t, err := unmarshalTransition(raw)
		if err != nil {
			return fmt.Errorf("links[%d]: %w", i, err)
		}
		out.Transitions = append(out.Transitions, t)
	}

	*a = out
	return nil
}

func unmarshalTransition(raw json.RawMessage) (Transition, error) {
	var tag wireTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, err
	}

	switch tag.Type {
	case wireStartLink:
		var s wireStart
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if s.Node < 0 {
			return nil, fmt.Errorf("negative node index %d", s.Node)
		}
		return Start{
			To:     s.Node,
			Text:   s.Text,
			Layout: StartLayout{DeltaX: s.DeltaX, DeltaY: s.DeltaY},
		}, nil

	case wireLink:
		var e wireEdge
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		if e.NodeA < 0 || e.NodeB < 0 {
			return nil, fmt.Errorf("negative node index (%d, %d)", e.NodeA, e.NodeB)
		}
		return Edge{
			From: e.NodeA,
			To:   e.NodeB,
			Text: e.Text,
			Layout: EdgeLayout{
				LineAngleAdjust:   e.LineAngleAdjust,
				ParallelPart:      e.ParallelPart,
				PerpendicularPart: e.PerpendicularPart,
			},
		}, nil

	case wireSelfLink:
		var s wireSelf
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if s.Node < 0 {
			return nil, fmt.Errorf("negative node index %d", s.Node)
		}
		return Edge{
			From:   s.Node,
			To:     s.Node,
			Text:   s.Text,
			Layout: EdgeLayout{Self: true, AnchorAngle: s.AnchorAngle},
		}, nil

	default:
		return nil, fmt.Errorf("unknown link type %q", tag.Type)
	}
}

// Parse decodes an automaton from its wire form.
func Parse(data []byte) (*Automaton, error) {
	var a Automaton
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("parse automaton: %w", err)
	}
	return &a, nil
}
