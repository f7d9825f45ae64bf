package programmer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ecgc-project/ecgc-util/cartridge"
	"github.com/ecgc-project/ecgc-util/debugger"
)

// Request describes an upload: which target region to program, where
// inside it to start, and how many bytes to move.
type Request struct {
	// Target is the memory region being programmed
	Target cartridge.Target

	// Offset is the first byte inside the target to write, relative to
	// the target's base address
	Offset int

	// Size is the number of image bytes to write. Zero means "as much
	// as fits": the smaller of the image length and the room left in
	// the target after Offset.
	Size int
}

// Summary reports a completed transfer.
type Summary struct {
	// BytesTransferred is the number of bytes moved
	BytesTransferred int

	// Elapsed is the wall time the transfer took
	Elapsed time.Duration
}

// Programmer performs whole-region uploads and dumps through an
// enabled debug core.
type Programmer struct {
	dbg    *debugger.Debugger
	config Config
}

// New creates a Programmer on top of the given debugger. The caller is
// responsible for resetting the link and enabling the debug core
// before starting a transfer.
func New(dbg *debugger.Debugger, opts ...Option) *Programmer {
	if dbg == nil {
		panic("debugger cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Programmer{
		dbg:    dbg,
		config: cfg,
	}
}

// Upload writes image bytes into the requested target region. The
// request is validated in full before any traffic reaches the
// cartridge: a request that does not fit its target fails with a
// *BoundsError and writes nothing.
//
// The transfer runs in ascending address order. A failure partway
// through surfaces as a *debugger.TransferError carrying the number of
// bytes confirmed before the failing chunk.
func (p *Programmer) Upload(ctx context.Context, req Request, image []byte) (*Summary, error) {
	size, err := p.validateUpload(req, image)
	if err != nil {
		return nil, err
	}

	p.logInfo("upload starting",
		"target", req.Target.String(),
		"offset", req.Offset,
		"size", size,
	)

	start := time.Now()
	address := req.Target.BaseAddress() + uint16(req.Offset)

	if err := p.prepare(ctx, address); err != nil {
		return nil, err
	}

	data := image[:size]
	done := 0
	for done < len(data) {
		chunk := data[done:min(done+p.config.ChunkSize, len(data))]
		if err := p.dbg.Write(ctx, chunk); err != nil {
			return nil, p.rewrapTransfer(done, err)
		}
		done += len(chunk)
		p.reportProgress(done, len(data))
	}

	summary := &Summary{
		BytesTransferred: size,
		Elapsed:          time.Since(start),
	}
	p.logInfo("upload complete", "bytes", summary.BytesTransferred, "elapsed", summary.Elapsed.String())
	return summary, nil
}

// Dump reads length bytes starting at the given absolute cartridge
// address and writes them to w in ascending address order. The range
// is validated against the cartridge memory map before any traffic.
func (p *Programmer) Dump(ctx context.Context, offset, length int, w io.Writer) (*Summary, error) {
	if err := validateDump(offset, length); err != nil {
		return nil, err
	}

	p.logInfo("dump starting", "offset", offset, "length", length)

	start := time.Now()
	if err := p.prepare(ctx, uint16(offset)); err != nil {
		return nil, err
	}

	done := 0
	for done < length {
		chunk := min(length-done, p.config.ChunkSize)
		data, err := p.dbg.Read(ctx, chunk)
		if err != nil {
			return nil, p.rewrapTransfer(done, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write output after %d bytes: %w", done, err)
		}
		done += len(data)
		p.reportProgress(done, length)
	}

	summary := &Summary{
		BytesTransferred: length,
		Elapsed:          time.Since(start),
	}
	p.logInfo("dump complete", "bytes", summary.BytesTransferred, "elapsed", summary.Elapsed.String())
	return summary, nil
}

// validateUpload checks a request against its target and resolves the
// effective transfer size.
func (p *Programmer) validateUpload(req Request, image []byte) (int, error) {
	capacity := req.Target.Capacity()

	if req.Offset < 0 || req.Offset >= capacity {
		return 0, &BoundsError{
			Operation: "upload",
			Detail: fmt.Sprintf("offset %d is outside target %s (capacity %d)",
				req.Offset, req.Target, capacity),
		}
	}

	size := req.Size
	if size == 0 {
		size = min(len(image), capacity-req.Offset)
	} else {
		if size < 0 {
			return 0, &BoundsError{
				Operation: "upload",
				Detail:    fmt.Sprintf("size %d is negative", size),
			}
		}
		if size > len(image) {
			return 0, &BoundsError{
				Operation: "upload",
				Detail: fmt.Sprintf("size %d exceeds the %d-byte image",
					size, len(image)),
			}
		}
	}

	if size == 0 {
		return 0, &BoundsError{
			Operation: "upload",
			Detail:    "image is empty, nothing to upload",
		}
	}
	if req.Offset+size > capacity {
		return 0, &BoundsError{
			Operation: "upload",
			Detail: fmt.Sprintf("offset %d + size %d exceeds target %s capacity %d",
				req.Offset, size, req.Target, capacity),
		}
	}

	return size, nil
}

func validateDump(offset, length int) error {
	if offset < 0 || offset >= cartridge.MemorySize {
		return &BoundsError{
			Operation: "dump",
			Detail: fmt.Sprintf("offset %d is outside the cartridge memory map (size %d)",
				offset, cartridge.MemorySize),
		}
	}
	if length < 1 {
		return &BoundsError{
			Operation: "dump",
			Detail:    fmt.Sprintf("length must be at least 1, got %d", length),
		}
	}
	if offset+length > cartridge.MemorySize {
		return &BoundsError{
			Operation: "dump",
			Detail: fmt.Sprintf("offset %d + length %d exceeds the cartridge memory map (size %d)",
				offset, length, cartridge.MemorySize),
		}
	}
	return nil
}

// prepare puts the core in sequential-transfer mode at the given start
// address.
func (p *Programmer) prepare(ctx context.Context, address uint16) error {
	if err := p.dbg.SetAutoIncrement(ctx, true); err != nil {
		return err
	}
	return p.dbg.SetAddress(ctx, address)
}

// rewrapTransfer folds the progress of completed chunks into a
// debugger transfer error so the count reflects the whole operation.
func (p *Programmer) rewrapTransfer(done int, err error) error {
	if te, ok := err.(*debugger.TransferError); ok {
		return &debugger.TransferError{
			BytesTransferred: done + te.BytesTransferred,
			Err:              te.Err,
		}
	}
	return err
}

func (p *Programmer) reportProgress(transferred, total int) {
	if p.config.Progress != nil {
		p.config.Progress(transferred, total)
	}
}

func (p *Programmer) logInfo(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Info(msg, keysAndValues...)
	}
}
