// Package portrait stores and resolves layered portrait images.
//
// An image root holds one directory per actor. Each image group (for
// example "Actor12b") may be packed into an archive at
// root/Actor/Actor12b.ima and may have loose variant files under
// root/Actor/12b. Per-group display transforms live in root/Images.dbz.
//
// [Library] ties these together:
//
//	lib, err := portrait.Open("/srv/images")
//	if err != nil {
//	    return err
//	}
//	groups, err := lib.Groups()
//	set, err := lib.Resolve("Actor12b")
//	src, _ := set.Get("Actor12b Smile")
//	img, err := lib.Load(src)
//
// Lower-level access is available in the [archive], [records], [resolver]
// and [locator] packages.
//
// # Writers
//
// Archive packing and record saves rewrite whole files. Library does not
// coordinate concurrent writers to the same root; run one writer at a
// time. Reads are safe to run concurrently.
package portrait
