// Package domain models the SEMACE beach water-quality bulletin for Fortaleza.
//
// # Data Source
//
// SEMACE (Superintendência Estadual do Meio Ambiente do Ceará) publishes a
// weekly PDF bulletin on https://www.semace.ce.gov.br/boletim-de-balneabilidade/.
// The listing page links one PDF per monitored city; the Fortaleza link is
// identified by its anchor text. The document has no stable schema: the header
// is free text and the beach list is a visual table whose cell boundaries
// shift between editions.
//
// # Header Conventions
//
// The first page carries three labelled fields in a fixed order:
//
//	"Boletim nº 33/2025 ... Período: 11/08/2025 a 17/08/2025 ... Tipos de Amostragem: Coleta simples. ..."
//
// Values are read as the text between consecutive labels after collapsing all
// whitespace to single spaces. The sample-type value ends at its first period.
// When a label is missing or out of order the three values are left empty and
// the bulletin is still processed. See [ParseHeader].
//
// Period format:
//
//	"DD/MM/YYYY a DD/MM/YYYY", both ends inclusive. Expanded into ISO dates
//	by [ExpandPeriod]; malformed or reversed periods expand to no days.
//
// # Table Conventions
//
// Column 0 holds beach names and column 1 holds a one-letter status:
//
//	P  própria para banho (fit for bathing)
//	I  imprópria para banho (unfit for bathing)
//
// Several names may share one visual status cell, in which case the extracted
// cells contain newline-separated entries and a single status. Header rows,
// section titles and agency captions leak into the extracted cells and are
// filtered as noise. See [NormalizeTables].
//
// # Zones
//
// Fortaleza's shoreline is split into East (Leste), Central (Centro) and West
// (Oeste) by neighbourhood keywords matched against the accent-folded beach
// name. The keyword lists are checked in that order and the first hit wins, so
// the order is part of the classification contract. Names matching no list get
// [ZoneUnknown]. See [ClassifyZone].
//
// # Record IDs
//
// Record IDs are 1-based positions within a single snapshot. They are not
// stable across bulletins and must not be used as durable identifiers.
package domain
