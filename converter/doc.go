// Package converter provides the Converter capability abstraction and the
// static extension-to-engine dispatch table used to pick one.
//
// Two concrete engines are provided: DirectEngine, which spawns a
// document-to-markdown tool per invocation, and BridgeEngine, which first
// rasterizes a document to PDF through a process-wide, semaphore-gated
// office suite before handing the PDF to a DirectEngine.
package converter
