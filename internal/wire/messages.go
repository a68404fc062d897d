package wire

import "google.golang.org/protobuf/encoding/protowire"

// RPC envelope messages for the ComplicationSource and UpdateManager
// services. Same hand-encoding convention as Data.

// UpdateRequest asks a data source for fresh data for one slot.
// SafeWatchFace carries the caller's safety tier: 0 unknown, 1 safe,
// 2 unsafe. Any other value is treated as unknown, never an error.
type UpdateRequest struct {
	InstanceID    int32
	Type          int32
	SafeWatchFace int32
}

func (r *UpdateRequest) MarshalWire() ([]byte, error) {
	var b []byte
	if r.InstanceID != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.InstanceID))
	}
	if r.Type != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.Type))
	}
	if r.SafeWatchFace != 0 {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.SafeWatchFace))
	}
	return b, nil
}

func (r *UpdateRequest) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, v uint64) {
		switch num {
		case 1:
			r.InstanceID = int32(v)
		case 2:
			r.Type = int32(v)
		case 3:
			r.SafeWatchFace = int32(v)
		}
	}, nil)
}

// InstanceRef names a complication instance for lifecycle notifications.
// Type is only set on activation events.
type InstanceRef struct {
	InstanceID int32
	Type       int32
}

func (r *InstanceRef) MarshalWire() ([]byte, error) {
	var b []byte
	if r.InstanceID != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.InstanceID))
	}
	if r.Type != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.Type))
	}
	return b, nil
}

func (r *InstanceRef) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, v uint64) {
		switch num {
		case 1:
			r.InstanceID = int32(v)
		case 2:
			r.Type = int32(v)
		}
	}, nil)
}

// PreviewRequest asks for representative static data for one type.
type PreviewRequest struct {
	Type int32
}

func (r *PreviewRequest) MarshalWire() ([]byte, error) {
	var b []byte
	if r.Type != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.Type))
	}
	return b, nil
}

func (r *PreviewRequest) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, v uint64) {
		if num == 1 {
			r.Type = int32(v)
		}
	}, nil)
}

// Ack is the empty acknowledgement message.
type Ack struct{}

func (*Ack) MarshalWire() ([]byte, error) { return nil, nil }

func (*Ack) UnmarshalWire(b []byte) error {
	return consumeFields(b, nil, nil)
}

// ApiVersionResponse reports the protocol version a source speaks.
type ApiVersionResponse struct {
	Version int32
}

func (r *ApiVersionResponse) MarshalWire() ([]byte, error) {
	var b []byte
	if r.Version != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.Version))
	}
	return b, nil
}

func (r *ApiVersionResponse) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, v uint64) {
		if num == 1 {
			r.Version = int32(v)
		}
	}, nil)
}

// DataResponse wraps an optional payload. A nil Data means "no update".
type DataResponse struct {
	Data *Data
}

func (r *DataResponse) MarshalWire() ([]byte, error) {
	var b []byte
	if r.Data != nil {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Data.append(nil))
	}
	return b, nil
}

func (r *DataResponse) UnmarshalWire(b []byte) error {
	return consumeFields(b, nil, func(num protowire.Number, v []byte) error {
		if num != 1 {
			return nil
		}
		d := new(Data)
		if err := d.UnmarshalWire(v); err != nil {
			return err
		}
		r.Data = d
		return nil
	})
}

// DeliveryRequest is the outbound updateComplicationData call to the
// platform's update manager. A nil Data means "no change".
type DeliveryRequest struct {
	InstanceID int32
	Data       *Data
}

func (r *DeliveryRequest) MarshalWire() ([]byte, error) {
	var b []byte
	if r.InstanceID != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.InstanceID))
	}
	if r.Data != nil {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Data.append(nil))
	}
	return b, nil
}

func (r *DeliveryRequest) UnmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, v uint64) {
		if num == 1 {
			r.InstanceID = int32(v)
		}
	}, func(num protowire.Number, v []byte) error {
		if num != 2 {
			return nil
		}
		d := new(Data)
		if err := d.UnmarshalWire(v); err != nil {
			return err
		}
		r.Data = d
		return nil
	})
}

// consumeFields walks every field in b, dispatching varints to onVarint and
// length-delimited fields to onBytes. Unknown and unhandled fields are
// skipped. Either callback may be nil.
func consumeFields(b []byte, onVarint func(protowire.Number, uint64), onBytes func(protowire.Number, []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return ErrTruncated
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return ErrTruncated
			}
			if onVarint != nil {
				onVarint(num, v)
			}
			b = b[m:]
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return ErrTruncated
			}
			if onBytes != nil {
				if err := onBytes(num, v); err != nil {
					return err
				}
			}
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return ErrTruncated
			}
			b = b[m:]
		}
	}
	return nil
}
