package translate

// Terminology systems shared by both translation directions.
const (
	vrsSchemaBase    = "https://w3id.org/ga4gh/schema/vrs/2.0.1/json/"
	gksExtensionBase = "https://github.com/ga4gh/gks-core/blob/1.0/schema/gks-core/json/Extension#properties/"

	// Focus codes on Allele profiles.
	focusSystemAllele = "http://hl7.org/fhir/moleculardefinition-focus"
	// Focus and molecule-type codes on Variation profiles.
	focusSystemVariation   = "http://hl7.org/fhir/uv/molecular-definition-data-types/CodeSystem/molecular-definition-focus"
	molTypeSystemVariation = "http://hl7.org/fhir/uv/molecular-definition-data-types/CodeSystem/molecule-type"
	// Molecule type expressed as a FHIR sequence-type code.
	sequenceTypeSystem = "http://hl7.org/fhir/sequence-type"
	// RefSeq accession cross-references in contained Sequence resources.
	refseqSystem = "http://www.ncbi.nlm.nih.gov/refseq"

	// Contained resource ids in the rich Allele profile form.
	containedSequenceID          = "vrs-location-sequence"
	containedSequenceReferenceID = "vrs-location-sequenceReference"
	// Contained resource id prefix in the simple form and in Variation
	// profiles, followed by the canonical accession id.
	containedRefPrefix = "ref-to-"

	focusCodeAlleleState      = "allele-state"
	focusCodeReferenceState   = "reference-state"
	focusCodeAlternativeState = "alternative-state"
)

// EntityURLs holds the identifier/extension systems for one VRS entity's
// fields. Zero-valued entries mean the entity does not carry that field.
type EntityURLs struct {
	ID          string
	Name        string
	Description string
	Aliases     string
	Digest      string
}

// URLTable binds every VRS field to the URL that encodes it on the FHIR
// side. A table is passed into each translator at construction so tests can
// substitute their own.
type URLTable struct {
	Allele            EntityURLs
	SequenceLocation  EntityURLs
	SequenceReference EntityURLs
	LiteralSequence   EntityURLs

	MoleculeType    string
	RefgetAccession string
	ResidueAlphabet string

	// Sub-field URLs for generic nested extensions.
	ExtensionName        string
	ExtensionValue       string
	ExtensionDescription string
}

func entityURLs(entity string) EntityURLs {
	base := vrsSchemaBase + entity + "#properties/"
	return EntityURLs{
		ID:          base + "id",
		Name:        base + "name",
		Description: base + "description",
		Aliases:     base + "aliases",
		Digest:      base + "digest",
	}
}

// DefaultURLs builds the standard URL table against the published VRS 2.0.1
// and gks-core schemas.
func DefaultURLs() URLTable {
	seqRefBase := vrsSchemaBase + "SequenceReference#properties/"

	// The literal's id rides on the FHIR literal element itself, and the
	// expression carries no digest.
	lse := entityURLs("LiteralSequenceExpression")
	lse.ID = ""
	lse.Digest = ""

	seqRef := entityURLs("SequenceReference")
	seqRef.Digest = ""

	return URLTable{
		Allele:            entityURLs("Allele"),
		SequenceLocation:  entityURLs("SequenceLocation"),
		SequenceReference: seqRef,
		LiteralSequence:   lse,

		MoleculeType:    seqRefBase + "moleculeType",
		RefgetAccession: seqRefBase + "refgetAccession",
		ResidueAlphabet: seqRefBase + "residueAlphabet",

		ExtensionName:        gksExtensionBase + "name",
		ExtensionValue:       gksExtensionBase + "value",
		ExtensionDescription: gksExtensionBase + "description",
	}
}

// Molecule type code maps. VRS names molecule types genomic/RNA/mRNA/
// protein; FHIR codes them dna/rna/amino acid.
var vrsToFhirMolType = map[string]string{
	"genomic": "dna",
	"DNA":     "dna",
	"RNA":     "rna",
	"mRNA":    "rna",
	"protein": "amino acid",
}

var fhirToVrsMolType = map[string]string{
	"dna":        "genomic",
	"rna":        "RNA",
	"amino acid": "protein",
}

// residueAlphabetFor infers the residue alphabet from a FHIR molecule-type
// code when the contained resource does not carry an explicit encoding.
func residueAlphabetFor(fhirMolType string) string {
	switch fhirMolType {
	case "dna", "rna":
		return "na"
	case "amino acid":
		return "aa"
	}
	return ""
}
