package viser

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Message is a typed wire message. The Type field doubles as the envelope
// discriminator; constructors and DecodeMessage keep it consistent.
type Message interface {
	MessageType() string
}

// Wire type names.
const (
	TypeSceneNodeTransform  = "SceneNodeTransformMessage"
	TypeSceneNodeVisibility = "SceneNodeVisibilityMessage"
	TypeRemoveSceneNode     = "RemoveSceneNodeMessage"
	TypeSetBonePoses        = "SetBonePosesMessage"
	TypeSetCamera           = "SetCameraMessage"
	TypeRenderRequest       = "RenderRequestMessage"
	TypeBackgroundImage     = "BackgroundImageMessage"
	TypeGuiSetValue         = "GuiSetValueMessage"
	TypeResetScene          = "ResetSceneMessage"

	TypeScenePointer   = "ScenePointerMessage"
	TypeViewerCamera   = "ViewerCameraMessage"
	TypeRenderResponse = "RenderResponseMessage"
	TypeGuiUpdate      = "GuiUpdateMessage"
)

// --- Inbound messages ---

// SceneNodeTransformMessage sets a node's orientation (wxyz) and position.
type SceneNodeTransformMessage struct {
	Type     string     `json:"type"`
	Name     string     `json:"name"`
	Wxyz     [4]float64 `json:"wxyz"`
	Position [3]float64 `json:"position"`
}

func (m *SceneNodeTransformMessage) MessageType() string { return TypeSceneNodeTransform }

// Orientation returns the wxyz payload as a Quaternion.
func (m *SceneNodeTransformMessage) Orientation() Quaternion {
	return Quaternion{W: m.Wxyz[0], X: m.Wxyz[1], Y: m.Wxyz[2], Z: m.Wxyz[3]}
}

// SceneNodeVisibilityMessage sets a node's server-side visibility.
type SceneNodeVisibilityMessage struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

func (m *SceneNodeVisibilityMessage) MessageType() string { return TypeSceneNodeVisibility }

// RemoveSceneNodeMessage deletes a node.
type RemoveSceneNodeMessage struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

func (m *RemoveSceneNodeMessage) MessageType() string { return TypeRemoveSceneNode }

// SetBonePosesMessage replaces a skinned node's bone poses wholesale.
// Wxyzs and Positions must have equal length.
type SetBonePosesMessage struct {
	Type      string       `json:"type"`
	Name      string       `json:"name"`
	Wxyzs     [][4]float64 `json:"bone_wxyzs"`
	Positions [][3]float64 `json:"bone_positions"`
}

func (m *SetBonePosesMessage) MessageType() string { return TypeSetBonePoses }

// SetCameraMessage repositions the viewer camera. A positive AnimateSeconds
// requests a smooth fly-to; zero snaps.
type SetCameraMessage struct {
	Type           string     `json:"type"`
	Position       [3]float64 `json:"position"`
	LookAt         [3]float64 `json:"look_at"`
	Up             [3]float64 `json:"up"`
	Fov            float64    `json:"fov,omitempty"` // radians; 0 = unchanged
	AnimateSeconds float64    `json:"animate_seconds,omitempty"`
}

func (m *SetCameraMessage) MessageType() string { return TypeSetCamera }

// RenderRequestMessage asks for an on-demand high-resolution frame capture.
type RenderRequestMessage struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"` // e.g. "image/png"
}

func (m *RenderRequestMessage) MessageType() string { return TypeRenderRequest }

// BackgroundImageMessage carries a color image, an optional depth image with
// camera-space depth packed into its color channels, and an enabled flag.
type BackgroundImageMessage struct {
	Type     string `json:"type"`
	ColorPNG []byte `json:"rgb_png"`
	DepthPNG []byte `json:"depth_png,omitempty"`
	Enabled  bool   `json:"enabled"`
}

func (m *BackgroundImageMessage) MessageType() string { return TypeBackgroundImage }

// GuiSetValueMessage updates a widget value in the external UI store.
type GuiSetValueMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Value any    `json:"value"`
}

func (m *GuiSetValueMessage) MessageType() string { return TypeGuiSetValue }

// ResetSceneMessage drops every node except the root.
type ResetSceneMessage struct {
	Type string `json:"type"`
}

func (m *ResetSceneMessage) MessageType() string { return TypeResetScene }

// --- Outbound messages ---

// ScenePointerMessage reports a click ray or selection rectangle to the
// server. Ray fields are null for rect-select; ScreenPos holds one
// coordinate pair for click and two (min, max corners) for rect-select.
type ScenePointerMessage struct {
	Type         string       `json:"type"`
	EventType    string       `json:"event_type"` // "click" | "rect-select"
	RayOrigin    *[3]float64  `json:"ray_origin"`
	RayDirection *[3]float64  `json:"ray_direction"`
	ScreenPos    [][2]float64 `json:"screen_pos"`
}

func (m *ScenePointerMessage) MessageType() string { return TypeScenePointer }

// NewClickMessage builds a click pointer message from a ray and an
// image-plane coordinate.
func NewClickMessage(origin, dir Vec3, screen Vec2) *ScenePointerMessage {
	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	return &ScenePointerMessage{
		Type:         TypeScenePointer,
		EventType:    "click",
		RayOrigin:    &o,
		RayDirection: &d,
		ScreenPos:    [][2]float64{{screen.X, screen.Y}},
	}
}

// NewRectSelectMessage builds a rect-select pointer message from two
// already-normalized corners (min, max).
func NewRectSelectMessage(min, max Vec2) *ScenePointerMessage {
	return &ScenePointerMessage{
		Type:      TypeScenePointer,
		EventType: "rect-select",
		ScreenPos: [][2]float64{{min.X, min.Y}, {max.X, max.Y}},
	}
}

// ViewerCameraMessage is the throttled upstream report of the local camera.
type ViewerCameraMessage struct {
	Type     string     `json:"type"`
	Wxyz     [4]float64 `json:"wxyz"`
	Position [3]float64 `json:"position"`
	Fov      float64    `json:"fov"`
	Aspect   float64    `json:"aspect"`
	LookAt   [3]float64 `json:"look_at"`
}

func (m *ViewerCameraMessage) MessageType() string { return TypeViewerCamera }

// RenderResponseMessage answers a render request with an encoded frame.
type RenderResponseMessage struct {
	Type    string `json:"type"`
	Payload []byte `json:"payload"`
	Format  string `json:"format"`
}

func (m *RenderResponseMessage) MessageType() string { return TypeRenderResponse }

// GuiUpdateMessage reports a locally changed widget value upstream.
type GuiUpdateMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Value any    `json:"value"`
}

func (m *GuiUpdateMessage) MessageType() string { return TypeGuiUpdate }

// --- Codec ---

// EncodeMessage serializes a message, stamping its envelope type.
func EncodeMessage(m Message) ([]byte, error) {
	stampType(m)
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	return data, nil
}

// stampType fills the Type discriminator on outbound messages so callers
// can construct structs directly without setting it.
func stampType(m Message) {
	switch v := m.(type) {
	case *SceneNodeTransformMessage:
		v.Type = TypeSceneNodeTransform
	case *SceneNodeVisibilityMessage:
		v.Type = TypeSceneNodeVisibility
	case *RemoveSceneNodeMessage:
		v.Type = TypeRemoveSceneNode
	case *SetBonePosesMessage:
		v.Type = TypeSetBonePoses
	case *SetCameraMessage:
		v.Type = TypeSetCamera
	case *RenderRequestMessage:
		v.Type = TypeRenderRequest
	case *BackgroundImageMessage:
		v.Type = TypeBackgroundImage
	case *GuiSetValueMessage:
		v.Type = TypeGuiSetValue
	case *ResetSceneMessage:
		v.Type = TypeResetScene
	case *ScenePointerMessage:
		v.Type = TypeScenePointer
	case *ViewerCameraMessage:
		v.Type = TypeViewerCamera
	case *RenderResponseMessage:
		v.Type = TypeRenderResponse
	case *GuiUpdateMessage:
		v.Type = TypeGuiUpdate
	}
}

// DecodeMessage parses an envelope and returns the concrete message.
// Unknown types return an error; the dispatch layer logs and skips them.
func DecodeMessage(data []byte) (Message, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var m Message
	switch env.Type {
	case TypeSceneNodeTransform:
		m = &SceneNodeTransformMessage{}
	case TypeSceneNodeVisibility:
		m = &SceneNodeVisibilityMessage{}
	case TypeRemoveSceneNode:
		m = &RemoveSceneNodeMessage{}
	case TypeSetBonePoses:
		m = &SetBonePosesMessage{}
	case TypeSetCamera:
		m = &SetCameraMessage{}
	case TypeRenderRequest:
		m = &RenderRequestMessage{}
	case TypeBackgroundImage:
		m = &BackgroundImageMessage{}
	case TypeGuiSetValue:
		m = &GuiSetValueMessage{}
	case TypeResetScene:
		m = &ResetSceneMessage{}
	case TypeScenePointer:
		m = &ScenePointerMessage{}
	case TypeViewerCamera:
		m = &ViewerCameraMessage{}
	case TypeRenderResponse:
		m = &RenderResponseMessage{}
	case TypeGuiUpdate:
		m = &GuiUpdateMessage{}
	default:
		return nil, fmt.Errorf("decode: unknown message type %q", env.Type)
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return m, nil
}
