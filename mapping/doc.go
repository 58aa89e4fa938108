/*
Package mapping contains the rules to classify and normalize OSM tags.

The rules are loaded from a YAML mapping file on top of the built-in
defaults (see mapping/config). A Mapping bundles the KeyClassifier, which
splits raw keys like "addr:street" into tag type and key, and the
audit.Auditor, which cleans the resulting tag rows.

ExtractTags converts the raw tags of a node or way into tag rows. Keys
with problem characters are skipped.
*/
package mapping
