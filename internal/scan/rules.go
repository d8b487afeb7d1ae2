package scan

// EvidenceSource selects which evidence text a rule inspects.
type EvidenceSource string

const (
	SourceSymbols EvidenceSource = "symbols"
	SourceHeader  EvidenceSource = "header"
)

// SignatureRule is one named category in the signature catalog: a token set
// to search for and the finding to emit when it matches. Rules whose absence
// is itself a finding carry a non-empty AbsentIssue.
type SignatureRule struct {
	Category string
	Source   EvidenceSource
	Tokens   []string

	MatchedIssue  string
	MatchedStatus Status
	// MatchedDescription may contain one %s placeholder, replaced with the
	// comma-joined list of distinct matched tokens.
	MatchedDescription string
	MatchedSeverity    float64
	MatchedCWE         string

	AbsentIssue       string
	AbsentStatus      Status
	AbsentDescription string
	AbsentSeverity    float64
	AbsentCWE         string
}

// DefaultRules returns the builtin signature catalog. The token sets,
// severities and CWE mappings are fixed per category, independent of which
// token matched.
func DefaultRules() []SignatureRule {
	return []SignatureRule{
		{
			Category:      "pie",
			Source:        SourceHeader,
			Tokens:        []string{"PIE"},
			MatchedIssue:  "fPIE -pie flag is Found",
			MatchedStatus: StatusSecure,
			MatchedDescription: "App is compiled with Position Independent Executable (PIE) flag. " +
				"This enables Address Space Layout Randomization (ASLR), a memory protection mechanism " +
				"for exploit mitigation.",
			AbsentIssue:  "fPIE -pie flag is not Found",
			AbsentStatus: StatusInsecure,
			AbsentDescription: "App is not compiled with Position Independent Executable (PIE) flag. " +
				"So Address Space Layout Randomization (ASLR) is missing. ASLR is a memory protection " +
				"mechanism for exploit mitigation.",
			AbsentSeverity: 2,
			AbsentCWE:      "CWE-119",
		},
		{
			Category:      "stack_protection",
			Source:        SourceSymbols,
			Tokens:        []string{"stack_chk_guard"},
			MatchedIssue:  "fstack-protector-all flag is Found",
			MatchedStatus: StatusSecure,
			MatchedDescription: "App is compiled with Stack Smashing Protector (SSP) flag and is " +
				"having protection against Stack Overflows/Stack Smashing Attacks.",
			AbsentIssue:  "fstack-protector-all flag is not Found",
			AbsentStatus: StatusInsecure,
			AbsentDescription: "App is not compiled with Stack Smashing Protector (SSP) flag. " +
				"It is vulnerable to Stack Overflows/Stack Smashing Attacks.",
			AbsentSeverity: 2,
			AbsentCWE:      "CWE-119",
		},
		{
			Category:      "arc",
			Source:        SourceSymbols,
			Tokens:        []string{"_objc_release"},
			MatchedIssue:  "fobjc-arc flag is Found",
			MatchedStatus: StatusSecure,
			MatchedDescription: "App is compiled with Automatic Reference Counting (ARC) flag. " +
				"ARC is a compiler feature that provides automatic memory management of Objective-C " +
				"objects and is an exploit mitigation mechanism against memory corruption vulnerabilities.",
			AbsentIssue:  "fobjc-arc flag is not Found",
			AbsentStatus: StatusInsecure,
			AbsentDescription: "App is not compiled with Automatic Reference Counting (ARC) flag. " +
				"ARC is a compiler feature that provides automatic memory management of Objective-C " +
				"objects and protects from memory corruption vulnerabilities.",
			AbsentSeverity: 2,
			AbsentCWE:      "CWE-119",
		},
		{
			Category: "banned_api",
			Source:   SourceSymbols,
			Tokens: []string{
				"_alloca", "_gets", "_memcpy", "_printf", "_scanf", "_sprintf", "_sscanf",
				"_strcat", "StrCat", "_strcpy", "StrCpy", "_strlen", "StrLen", "_strncat",
				"StrNCat", "_strncpy", "StrNCpy", "_strtok", "_swprintf", "_vsnprintf",
				"_vsprintf", "_vswprintf", "_wcscat", "_wcscpy", "_wcslen", "_wcsncat",
				"_wcsncpy", "_wcstok", "_wmemcpy", "_fopen", "_chmod", "_chown", "_stat",
				"_mktemp",
			},
			MatchedIssue:       "Binary make use of banned API(s)",
			MatchedStatus:      StatusInsecure,
			MatchedDescription: "The binary may contain the following banned API(s) %s.",
			MatchedSeverity:    6,
			MatchedCWE:         "CWE-676",
		},
		{
			Category: "weak_crypto",
			Source:   SourceSymbols,
			Tokens: []string{
				"kCCAlgorithmDES", "kCCAlgorithm3DES", "kCCAlgorithmRC2", "kCCAlgorithmRC4",
				"kCCOptionECBMode", "kCCOptionCBCMode",
			},
			MatchedIssue:       "Binary make use of some Weak Crypto API(s)",
			MatchedStatus:      StatusInsecure,
			MatchedDescription: "The binary may use the following weak crypto API(s) %s.",
			MatchedSeverity:    3,
			MatchedCWE:         "CWE-327",
		},
		{
			Category: "crypto_api",
			Source:   SourceSymbols,
			Tokens: []string{
				"CCKeyDerivationPBKDF", "CCCryptorCreate", "CCCryptorCreateFromData",
				"CCCryptorRelease", "CCCryptorUpdate", "CCCryptorFinal",
				"CCCryptorGetOutputLength", "CCCryptorReset", "CCCryptorRef", "kCCEncrypt",
				"kCCDecrypt", "kCCAlgorithmAES128", "kCCKeySizeAES128", "kCCKeySizeAES192",
				"kCCKeySizeAES256", "kCCAlgorithmCAST", "SecCertificateGetTypeID",
				"SecIdentityGetTypeID", "SecKeyGetTypeID", "SecPolicyGetTypeID",
				"SecTrustGetTypeID", "SecCertificateCreateWithData",
				"SecCertificateCreateFromData", "SecCertificateCopyData",
				"SecCertificateAddToKeychain", "SecCertificateGetData",
				"SecCertificateCopySubjectSummary", "SecIdentityCopyCertificate",
				"SecIdentityCopyPrivateKey", "SecPKCS12Import", "SecKeyGeneratePair",
				"SecKeyEncrypt", "SecKeyDecrypt", "SecKeyRawSign", "SecKeyRawVerify",
				"SecKeyGetBlockSize", "SecPolicyCopyProperties", "SecPolicyCreateBasicX509",
				"SecPolicyCreateSSL", "SecTrustCopyCustomAnchorCertificates",
				"SecTrustCopyExceptions", "SecTrustCopyProperties", "SecTrustCopyPolicies",
				"SecTrustCopyPublicKey", "SecTrustCreateWithCertificates", "SecTrustEvaluate",
				"SecTrustEvaluateAsync", "SecTrustGetCertificateCount",
				"SecTrustGetCertificateAtIndex", "SecTrustGetTrustResult",
				"SecTrustGetVerifyTime", "SecTrustSetAnchorCertificates",
				"SecTrustSetAnchorCertificatesOnly", "SecTrustSetExceptions",
				"SecTrustSetPolicies", "SecTrustSetVerifyDate", "SecCertificateRef",
				"SecIdentityRef", "SecKeyRef", "SecPolicyRef", "SecTrustRef",
			},
			MatchedIssue:       "Binary make use of the following Crypto API(s)",
			MatchedStatus:      StatusInfo,
			MatchedDescription: "The binary may use the following crypto API(s) %s.",
		},
		{
			Category: "weak_hash",
			Source:   SourceSymbols,
			Tokens: []string{
				"CC_MD2_Init", "CC_MD2_Update", "CC_MD2_Final", "CC_MD2", "MD2_Init",
				"MD2_Update", "MD2_Final", "CC_MD4_Init", "CC_MD4_Update", "CC_MD4_Final",
				"CC_MD4", "MD4_Init", "MD4_Update", "MD4_Final", "CC_MD5_Init",
				"CC_MD5_Update", "CC_MD5_Final", "CC_MD5", "MD5_Init", "MD5_Update",
				"MD5_Final", "MD5Init", "MD5Update", "MD5Final", "CC_SHA1_Init",
				"CC_SHA1_Update", "CC_SHA1_Final", "CC_SHA1", "SHA1_Init", "SHA1_Update",
				"SHA1_Final",
			},
			MatchedIssue:       "Binary make use of the following Weak HASH API(s)",
			MatchedStatus:      StatusInsecure,
			MatchedDescription: "The binary may use the following weak hash API(s) %s.",
			MatchedSeverity:    3,
			MatchedCWE:         "CWE-327",
		},
		{
			Category: "hash_api",
			Source:   SourceSymbols,
			Tokens: []string{
				"CC_SHA224_Init", "CC_SHA224_Update", "CC_SHA224_Final", "CC_SHA224",
				"SHA224_Init", "SHA224_Update", "SHA224_Final", "CC_SHA256_Init",
				"CC_SHA256_Update", "CC_SHA256_Final", "CC_SHA256", "SHA256_Init",
				"SHA256_Update", "SHA256_Final", "CC_SHA384_Init", "CC_SHA384_Update",
				"CC_SHA384_Final", "CC_SHA384", "SHA384_Init", "SHA384_Update",
				"SHA384_Final", "CC_SHA512_Init", "CC_SHA512_Update", "CC_SHA512_Final",
				"CC_SHA512", "SHA512_Init", "SHA512_Update", "SHA512_Final",
			},
			MatchedIssue:       "Binary make use of the following HASH API(s)",
			MatchedStatus:      StatusInfo,
			MatchedDescription: "The binary may use the following hash API(s) %s.",
		},
		{
			Category:           "insecure_random",
			Source:             SourceSymbols,
			Tokens:             []string{"_srand", "_random"},
			MatchedIssue:       "Binary make use of the insecure Random Function(s)",
			MatchedStatus:      StatusInsecure,
			MatchedDescription: "The binary may use the following insecure Random Function(s) %s.",
			MatchedSeverity:    3,
			MatchedCWE:         "CWE-338",
		},
		{
			Category:           "logging",
			Source:             SourceSymbols,
			Tokens:             []string{"_NSLog"},
			MatchedIssue:       "Binary make use of Logging Function",
			MatchedStatus:      StatusInfo,
			MatchedDescription: "The binary may use NSLog function for logging.",
			MatchedSeverity:    7.5,
			MatchedCWE:         "CWE-532",
		},
		{
			Category:           "malloc",
			Source:             SourceSymbols,
			Tokens:             []string{"_malloc"},
			MatchedIssue:       "Binary make use of malloc Function",
			MatchedStatus:      StatusInsecure,
			MatchedDescription: "The binary may use malloc function instead of calloc.",
			MatchedSeverity:    2,
			MatchedCWE:         "CWE-789",
		},
		{
			Category:      "anti_debug",
			Source:        SourceSymbols,
			Tokens:        []string{"_ptrace"},
			MatchedIssue:  "Binary calls ptrace Function for anti-debugging.",
			MatchedStatus: StatusWarning,
			MatchedDescription: "The binary may use ptrace function. It can be used to detect and " +
				"prevent debuggers. Ptrace is not a public API and Apps that use non-public APIs " +
				"will be rejected from AppStore.",
		},
	}
}
