// Package programmer implements whole-region transfers between local
// files and the ecgc cartridge: uploading an image into the boot ROM,
// DRAM or flash target, and dumping a range of the cartridge memory
// map to a file.
//
// Requests are validated in full before the first byte goes out on the
// wire; a request that does not fit its target fails with a
// *BoundsError and leaves the cartridge untouched. Transfers move data
// in ascending address order and report progress per chunk.
//
//	dbg := debugger.New(port)
//	// reset the link and enable the core first
//	prog := programmer.New(dbg)
//	summary, err := prog.Upload(ctx, programmer.Request{
//	    Target: cartridge.TargetDRAM,
//	}, image)
package programmer
