// Package encryption encrypts and decrypts files in the miniLock format.
//
// A FileEncryptor streams a source file through the chunk codec into a scratch
// payload, builds the recipient header once the content hash is known and
// writes magic bytes, header and payload into the destination. A FileDecryptor
// reverses this. The Processor runs either over many files concurrently.
package encryption
