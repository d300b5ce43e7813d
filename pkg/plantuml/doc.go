// Package plantuml talks to a PlantUML rendering server.
//
// # Encoding
//
// [Encode] compresses PlantUML text into a zlib stream at the default level
// and encodes the result with standard base64, padding included. Prefixed
// with "~1", the token tells the server it is looking at deflate+base64
// rather than PlantUML's own legacy alphabet:
//
//	token := plantuml.Encode("@startuml\nA -> B\n@enduml")
//	url := "http://www.plantuml.com/plantuml/png/~1" + token
//
// Encoding is pure and never fails. [Decode] reverses it.
//
// # Rendering
//
// [Wrap] adds the @startuml/@enduml frame to bare PlantUML text, so .puml
// files written without it can be rendered as they are.
//
// [Client.Fetch] performs exactly one GET per call. There is no retry and
// no timeout beyond what the supplied *http.Client sets; cancel the context
// to abort a request.
package plantuml
