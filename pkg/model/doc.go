// Package model defines the value types exchanged with the model graph:
// versioned model descriptions and the transformation descriptions that
// connect them.
//
// # Models
//
// A [ModelDescription] names a data model and its version. Its
// [ModelDescription.Key] ("name:version") is the identity of the node the
// model occupies in the graph:
//
//	m := model.NewModel("org.example.Contact", "1.0.0")
//	m.Key() // "org.example.Contact:1.0.0"
//
// Versions are free-form strings; bundle versions such as "3.0.0.SNAPSHOT"
// are valid. [Compare] orders versions semantically when both parse with
// github.com/Masterminds/semver/v3 and as strings otherwise.
//
// # Transformations
//
// A [TransformationDescription] is a directed conversion from a source model
// to a target model, built from [TransformationStep] field operations:
//
//	d := model.NewTransformation(contact, person)
//	d.ForwardField("email", "mail")
//	d.ConcatField("fullName", " ", "firstName", "lastName")
//
// Descriptions without an ID receive one from the graph when they are added;
// generated ids start with [InternalIDPrefix].
package model
