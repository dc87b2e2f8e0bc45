// Package soa provides a generic structure-of-arrays container for Go.
//
// A Vector[T] stores records of a struct type T column-wise: each field
// of T occupies its own contiguous run inside a single allocation,
// instead of the field-interleaved layout of []T. Columnar layout keeps
// per-field scans dense and cache-friendly while the API stays
// record-oriented.
//
// # Quick Start
//
//	type Person struct {
//	    Name string
//	    Age  int32
//	}
//
//	v := soa.MustNew[Person]()
//	v.Append(Person{Name: "Alice", Age: 30})
//	v.Append(Person{Name: "Bob", Age: 25})
//
//	ages := soa.MustFieldByName[int32](v, "Age")
//	for i := 0; i < ages.Len(); i++ {
//	    ages.Set(i, ages.Get(i)+1)
//	}
//
// # Field Views
//
// A Span[F] is a live view of one field's run. It tracks the container
// through growth and mutation, so a span taken once stays valid:
//
//	names := soa.MustField[string](v, 0)
//	names.Slice()  // []string aliasing the current allocation
//
// # Record Proxies
//
// Index, Front and Back return Ref[T] proxies that gather and scatter
// whole records:
//
//	r := v.Index(0)
//	p := r.Value()          // materialized Person
//	r.Set(Person{...})      // write all fields of slot 0
//
// # Selections
//
// Select builds a bitmap of matching indices for set-style filtering:
//
//	adults := soa.Select(ages, func(a int32) bool { return a >= 18 })
//	people := soa.Gather(v, adults)
//
// # Snapshots
//
// WriteTo and ReadFrom persist a vector in a columnar binary format
// with optional per-field LZ4 or zstd compression:
//
//	v.WriteTo(f)
//	w := soa.MustNew[Person]()
//	w.ReadFrom(f)
package soa
