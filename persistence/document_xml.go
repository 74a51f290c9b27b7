package persistence

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/shaban/trackgraph/document"
)

// xmlDocument is the on-disk shape of a document.Document: every field
// the model needs reconstructed, nothing the model computes (node index,
// track index, lane maps) since those are rebuilt from the Processors'
// Slot fields on load.
type xmlDocument struct {
	XMLName     xml.Name        `xml:"document"`
	Tracks      []xmlTrack      `xml:"track"`
	MasterTrack xmlTrack        `xml:"master_track"`
	Input       []xmlProcessor  `xml:"input>processor"`
	Output      []xmlProcessor  `xml:"output>processor"`
	View        xmlView         `xml:"view"`
	Connections []xmlConnection `xml:"connection"`
}

type xmlTrack struct {
	ID              string         `xml:"id,attr"`
	Name            string         `xml:"name,attr"`
	Colour          string         `xml:"colour,attr"`
	Selected        bool           `xml:"selected,attr"`
	InputProcessor  *xmlProcessor  `xml:"input_processor"`
	OutputProcessor *xmlProcessor  `xml:"output_processor"`
	Processors      []xmlProcessor `xml:"processor"`
	SelectedMask    uint64         `xml:"selected_slots_mask,attr"`
}

type xmlProcessor struct {
	NodeID                  int64           `xml:"node_id,attr"`
	ID                      string          `xml:"id,attr"`
	Name                    string          `xml:"name,attr"`
	Slot                    int             `xml:"slot,attr"`
	Bypassed                bool            `xml:"bypassed,attr"`
	AllowDefaultConnections bool            `xml:"allow_default_connections,attr"`
	NumInputChannels        int             `xml:"num_input_channels,attr"`
	NumOutputChannels       int             `xml:"num_output_channels,attr"`
	AcceptsMIDI             bool            `xml:"accepts_midi,attr"`
	ProducesMIDI            bool            `xml:"produces_midi,attr"`
	PluginState             string          `xml:"plugin_state"`
	DeviceName              string          `xml:"device_name,attr"`
	WindowX                 int             `xml:"window_x,attr"`
	WindowY                 int             `xml:"window_y,attr"`
	WindowType              string          `xml:"window_type,attr"`
	Parameters              []xmlParameter  `xml:"parameter"`
}

type xmlParameter struct {
	ID      string  `xml:"id,attr"`
	Name    string  `xml:"name,attr"`
	Value   float32 `xml:"value,attr"`
	Default float32 `xml:"default,attr"`
	Min     float32 `xml:"min,attr"`
	Max     float32 `xml:"max,attr"`
	Steps   int     `xml:"steps,attr"`
}

type xmlView struct {
	FocusedTrackIndex       int `xml:"focused_track_index,attr"`
	FocusedProcessorSlot    int `xml:"focused_processor_slot,attr"`
	GridViewTrackOffset     int `xml:"grid_view_track_offset,attr"`
	GridViewSlotOffset      int `xml:"grid_view_slot_offset,attr"`
	MasterViewSlotOffset    int `xml:"master_view_slot_offset,attr"`
	NumProcessorSlots       int `xml:"num_processor_slots,attr"`
	NumMasterProcessorSlots int `xml:"num_master_processor_slots,attr"`
}

type xmlConnection struct {
	SrcNode int64 `xml:"src_node,attr"`
	SrcCh   int   `xml:"src_channel,attr"`
	DstNode int64 `xml:"dst_node,attr"`
	DstCh   int   `xml:"dst_channel,attr"`
	Custom  bool  `xml:"custom,attr"`
}

// Save writes doc as XML to w.
func Save(doc *document.Document, w io.Writer) error {
	x := toXML(doc)
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(x); err != nil {
		return fmt.Errorf("persistence: encode: %w", err)
	}
	return nil
}

// SaveToFile writes doc as XML to path.
func SaveToFile(doc *document.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("persistence: create %s: %w", path, err)
	}
	defer f.Close()
	return Save(doc, f)
}

// Load reads an XML document from r and rebuilds a document.Document.
func Load(r io.Reader) (*document.Document, error) {
	var x xmlDocument
	if err := xml.NewDecoder(r).Decode(&x); err != nil {
		return nil, fmt.Errorf("persistence: decode: %w", err)
	}
	return fromXML(&x)
}

// LoadFromFile reads an XML document from path.
func LoadFromFile(path string) (*document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("persistence: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

func toXML(doc *document.Document) *xmlDocument {
	x := &xmlDocument{
		MasterTrack: trackToXML(doc.MasterTrack),
		View:        viewToXML(doc.View),
	}
	for _, t := range doc.NonMasterTracks() {
		x.Tracks = append(x.Tracks, trackToXML(t))
	}
	for _, p := range doc.Input.Processors {
		x.Input = append(x.Input, processorToXML(p))
	}
	for _, p := range doc.Output.Processors {
		x.Output = append(x.Output, processorToXML(p))
	}
	for _, c := range doc.Connections {
		x.Connections = append(x.Connections, xmlConnection{
			SrcNode: int64(c.Source.Node), SrcCh: int(c.Source.Channel),
			DstNode: int64(c.Destination.Node), DstCh: int(c.Destination.Channel),
			Custom: c.IsCustom,
		})
	}
	return x
}

func trackToXML(t *document.Track) xmlTrack {
	xt := xmlTrack{
		ID:           t.ID.String(),
		Name:         t.Name,
		Colour:       t.Colour,
		Selected:     t.Selected,
		SelectedMask: t.Lane.SelectedSlotsMask,
	}
	if t.InputProcessor != nil {
		p := processorToXML(t.InputProcessor)
		xt.InputProcessor = &p
	}
	if t.OutputProcessor != nil {
		p := processorToXML(t.OutputProcessor)
		xt.OutputProcessor = &p
	}
	for _, p := range t.Lane.Processors() {
		xt.Processors = append(xt.Processors, processorToXML(p))
	}
	return xt
}

func processorToXML(p *document.Processor) xmlProcessor {
	xp := xmlProcessor{
		NodeID:                  int64(p.NodeID),
		ID:                      p.ID,
		Name:                    p.Name,
		Slot:                    p.Slot,
		Bypassed:                p.Bypassed,
		AllowDefaultConnections: p.AllowDefaultConnections,
		NumInputChannels:        p.NumInputChannels,
		NumOutputChannels:       p.NumOutputChannels,
		AcceptsMIDI:             p.AcceptsMIDI,
		ProducesMIDI:            p.ProducesMIDI,
		PluginState:             p.PluginState,
		DeviceName:              p.DeviceName,
		WindowX:                 p.WindowX,
		WindowY:                 p.WindowY,
		WindowType:              p.WindowType,
	}
	for _, prm := range p.Parameters {
		xp.Parameters = append(xp.Parameters, xmlParameter{
			ID: prm.ID, Name: prm.DisplayName, Value: prm.Value,
			Default: prm.Default, Min: prm.Min, Max: prm.Max, Steps: prm.Steps,
		})
	}
	return xp
}

func viewToXML(v *document.View) xmlView {
	return xmlView{
		FocusedTrackIndex:       v.FocusedTrackIndex,
		FocusedProcessorSlot:    v.FocusedProcessorSlot,
		GridViewTrackOffset:     v.GridViewTrackOffset,
		GridViewSlotOffset:      v.GridViewSlotOffset,
		MasterViewSlotOffset:    v.MasterViewSlotOffset,
		NumProcessorSlots:       v.NumProcessorSlots,
		NumMasterProcessorSlots: v.NumMasterProcessorSlots,
	}
}

func fromXML(x *xmlDocument) (*document.Document, error) {
	doc := document.New()

	// doc.New() already created a master track with a fresh uuid; replace
	// its identity/content with the saved one's rather than trying to
	// re-key the internal index maps from outside the package.
	masterID, err := parseTrackID(x.MasterTrack.ID)
	if err != nil {
		return nil, err
	}
	doc.MasterTrack.Name = x.MasterTrack.Name
	doc.MasterTrack.Colour = x.MasterTrack.Colour
	doc.MasterTrack.Selected = x.MasterTrack.Selected
	doc.MasterTrack.ID = masterID
	if err := applyProcessors(doc, doc.MasterTrack, x.MasterTrack); err != nil {
		return nil, err
	}

	for i, xt := range x.Tracks {
		id, err := parseTrackID(xt.ID)
		if err != nil {
			return nil, err
		}
		t := document.NewTrack(id, xt.Name, false)
		t.Colour = xt.Colour
		t.Selected = xt.Selected
		if err := doc.InsertTrack(i, t, nil); err != nil {
			return nil, err
		}
		if err := applyProcessors(doc, t, xt); err != nil {
			return nil, err
		}
		doc.SetSlotMask(t.Lane, xt.SelectedMask, nil)
	}

	for _, xp := range x.Input {
		doc.AddIOProcessor(true, processorFromXML(xp), nil)
	}
	for _, xp := range x.Output {
		doc.AddIOProcessor(false, processorFromXML(xp), nil)
	}

	for _, xc := range x.Connections {
		doc.AddConnection(document.Connection{
			Source:      document.NodePort{Node: document.NodeID(xc.SrcNode), Channel: document.Channel(xc.SrcCh)},
			Destination: document.NodePort{Node: document.NodeID(xc.DstNode), Channel: document.Channel(xc.DstCh)},
			IsCustom:    xc.Custom,
		}, nil)
	}

	doc.AdvanceNodeIDAllocator(document.NodeID(maxNodeID(x)))

	doc.SetFocus(x.View.FocusedTrackIndex, x.View.FocusedProcessorSlot, nil)
	doc.SetViewOffsets(x.View.GridViewTrackOffset, x.View.GridViewSlotOffset, x.View.MasterViewSlotOffset)
	doc.View.NumProcessorSlots = x.View.NumProcessorSlots
	doc.View.NumMasterProcessorSlots = x.View.NumMasterProcessorSlots

	return doc, nil
}

func applyProcessors(doc *document.Document, t *document.Track, xt xmlTrack) error {
	if xt.InputProcessor != nil {
		p := processorFromXML(*xt.InputProcessor)
		doc.AttachTrackIO(t, p, nil)
	}
	if xt.OutputProcessor != nil {
		p := processorFromXML(*xt.OutputProcessor)
		doc.AttachTrackIO(t, nil, p)
	}
	for _, xp := range xt.Processors {
		p := processorFromXML(xp)
		if err := doc.InsertProcessor(t.Lane, p, xp.Slot, nil); err != nil {
			return err
		}
	}
	return nil
}

func processorFromXML(xp xmlProcessor) *document.Processor {
	p := &document.Processor{
		NodeID:                  document.NodeID(xp.NodeID),
		ID:                      xp.ID,
		Name:                    xp.Name,
		Slot:                    xp.Slot,
		Bypassed:                xp.Bypassed,
		AllowDefaultConnections: xp.AllowDefaultConnections,
		NumInputChannels:        xp.NumInputChannels,
		NumOutputChannels:       xp.NumOutputChannels,
		AcceptsMIDI:             xp.AcceptsMIDI,
		ProducesMIDI:            xp.ProducesMIDI,
		PluginState:             xp.PluginState,
		DeviceName:              xp.DeviceName,
		WindowX:                 xp.WindowX,
		WindowY:                 xp.WindowY,
		WindowType:              xp.WindowType,
	}
	for _, xprm := range xp.Parameters {
		p.Parameters = append(p.Parameters, &document.Parameter{
			ID: xprm.ID, DisplayName: xprm.Name, Value: xprm.Value,
			Default: xprm.Default, Min: xprm.Min, Max: xprm.Max, Steps: xprm.Steps,
		})
	}
	return p
}

// maxNodeID scans every processor's NodeID in x, so the allocator can be
// advanced past whatever was loaded.
func maxNodeID(x *xmlDocument) int64 {
	var max int64
	note := func(p *xmlProcessor) {
		if p != nil && p.NodeID > max {
			max = p.NodeID
		}
	}
	scanTrack := func(t xmlTrack) {
		note(t.InputProcessor)
		note(t.OutputProcessor)
		for i := range t.Processors {
			note(&t.Processors[i])
		}
	}
	scanTrack(x.MasterTrack)
	for _, t := range x.Tracks {
		scanTrack(t)
	}
	for i := range x.Input {
		note(&x.Input[i])
	}
	for i := range x.Output {
		note(&x.Output[i])
	}
	return max
}

func parseTrackID(s string) (document.TrackID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return document.TrackID{}, fmt.Errorf("persistence: bad track id %q: %w", s, err)
	}
	return id, nil
}
