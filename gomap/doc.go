// Package gomap maps Go records to and from IR nodes.
//
// A record is a struct type with a designated constructor. The mapper
// serializes a record by reading its fields, and deserializes one by
// decoding each field from an object node and calling the constructor.
//
// # Usage
//
//	type Server struct {
//	    Host    string
//	    Port    int
//	    Started time.Time
//	    secret  string `config:"-"`
//	    Labels  map[string]string `config:"name=tags"`
//	}
//
//	func NewServer(host string, port int, started time.Time, labels map[string]string) Server {
//	    return Server{Host: host, Port: port, Started: started, Labels: labels}
//	}
//
//	m, err := gomap.NewMapper(gomap.WithConstructor(NewServer))
//	node, err := m.Serialize(srv)
//	srv2, err := gomap.Decode[Server](m, node)
//
// Constructor parameters bind, in order, to the record's fields as
// Mapper.Fields reports them: declared fields first, then the fields of
// embedded structs. WithRecord registers a constructor that assigns the
// fields directly instead.
//
// # Field tags
//
// Field options live under the "config" tag key:
//
//   - name=<key> sets the encoded key
//   - "-" or exclude drops the field
//
// Keys are matched case-insensitively when decoding.
//
// # Codecs
//
// Types the mapper cannot handle structurally are converted by codecs
// from a codec.Registry. FieldCodec binds a codec to one field,
// LocalCodecs to one record and everything inside it.
//
// # Related Packages
//
//   - github.com/signadot/confmap/ir - IR representation
//   - github.com/signadot/confmap/codec - Codecs and registries
package gomap
