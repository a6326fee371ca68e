// Command portrait manages a portrait image root from the command line:
// packing and unpacking group archives, listing archive contents,
// resolving group variants, showing and migrating group records, and
// verifying every archive under the root.
package main
