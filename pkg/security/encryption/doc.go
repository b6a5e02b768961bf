/*
Package encryption implements passphrase based symmetric encryption of
exported artifacts.

Tokens use the Fernet layout: a version byte (0x80), an 8-byte big-endian
timestamp, a 16-byte IV, the AES-128-CBC ciphertext with PKCS#7 padding and
an HMAC-SHA256 over everything before it, encoded as URL-safe base64. The
key is the SHA-256 digest of the passphrase, so artifacts written by earlier
zabbup releases decrypt unchanged.

# Modes

Randomized mode draws a fresh IV for every call:

	token, err := encryption.Encrypt(data, passphrase, false)

Deterministic mode derives the IV from the key and zeroes the timestamp, so
unchanged content yields byte-identical artifacts and the git output does not
produce a commit for it:

	token, err := encryption.Encrypt(data, passphrase, true)

Both modes are read by the same call:

	plaintext, err := encryption.Decrypt(token, passphrase)

Deterministic tokens reveal when two artifacts hold equal content.
*/
package encryption
